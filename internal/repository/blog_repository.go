package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bloglist-api/internal/model"
)

type BlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

func (r *BlogRepository) Create(ctx context.Context, blog *model.Blog) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(blog).Error; err != nil {
		return fmt.Errorf("create blog failed: %w", err)
	}
	return nil
}

func (r *BlogRepository) GetByID(ctx context.Context, id string) (*model.Blog, error) {
	var blog model.Blog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query blog by id failed: %w", err)
	}
	return &blog, nil
}

// List returns every blog with its owner preloaded.
func (r *BlogRepository) List(ctx context.Context) ([]model.Blog, error) {
	var blogs []model.Blog
	if err := r.db.WithContext(ctx).Preload("User").Order("created_at ASC").Find(&blogs).Error; err != nil {
		return nil, fmt.Errorf("list blogs failed: %w", err)
	}
	return blogs, nil
}

// Update writes the mutable columns and reports whether the blog still
// exists. Ownership is never rewritten.
func (r *BlogRepository) Update(ctx context.Context, blog *model.Blog) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Blog{ID: blog.ID}).
		Updates(map[string]interface{}{
			"title":  blog.Title,
			"author": blog.Author,
			"url":    blog.URL,
			"likes":  blog.Likes,
		})
	if res.Error != nil {
		return false, fmt.Errorf("update blog failed: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// MySQL reports zero affected rows when no column value changed.
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Blog{}).Where("id = ?", blog.ID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check blog after update failed: %w", err)
	}
	return n > 0, nil
}

// Delete removes the blog and reports whether a row was actually deleted.
func (r *BlogRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Blog{})
	if res.Error != nil {
		return false, fmt.Errorf("delete blog failed: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *BlogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Blog{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count blogs failed: %w", err)
	}
	return n, nil
}
