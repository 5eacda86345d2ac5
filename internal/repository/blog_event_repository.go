package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bloglist-api/internal/model"
)

type BlogEventRepository struct {
	db *gorm.DB
}

func NewBlogEventRepository(db *gorm.DB) *BlogEventRepository {
	return &BlogEventRepository{db: db}
}

func (r *BlogEventRepository) Create(ctx context.Context, event *model.BlogEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create blog event failed: %w", err)
	}
	return nil
}

func (r *BlogEventRepository) ListByBlogID(ctx context.Context, blogID string) ([]model.BlogEvent, error) {
	var events []model.BlogEvent
	if err := r.db.WithContext(ctx).Where("blog_id = ?", blogID).Order("occurred_at ASC, id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list blog events failed: %w", err)
	}
	return events, nil
}
