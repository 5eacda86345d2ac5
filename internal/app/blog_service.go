package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bloglist-api/internal/model"
	"bloglist-api/internal/repository"
)

// ListCache holds the rendered blog and user lists. Any mutation calls
// Invalidate; reads bypass the cache while it is dirty. Set* only stores a
// list when the generation taken before the database read is still current.
type ListCache interface {
	GetBlogs(ctx context.Context) ([]model.Blog, bool, error)
	SetBlogs(ctx context.Context, generation int64, blogs []model.Blog) error
	GetUsers(ctx context.Context) ([]model.User, bool, error)
	SetUsers(ctx context.Context, generation int64, users []model.User) error
	Generation(ctx context.Context) (int64, error)
	Invalidate(ctx context.Context) error
	IsDirty(ctx context.Context) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.BlogEvent) error
}

type BlogService struct {
	blogRepo  *repository.BlogRepository
	userRepo  *repository.UserRepository
	eventRepo *repository.BlogEventRepository
	cache     ListCache
	publisher EventPublisher
}

type CreateBlogInput struct {
	Title  string
	Author string
	URL    string
	Likes  *int
}

// UpdateBlogInput replaces only the fields that are set.
type UpdateBlogInput struct {
	Title  *string
	Author *string
	URL    *string
	Likes  *int
}

func NewBlogService(
	blogRepo *repository.BlogRepository,
	userRepo *repository.UserRepository,
	eventRepo *repository.BlogEventRepository,
	cache ListCache,
	publisher EventPublisher,
) *BlogService {
	return &BlogService{
		blogRepo:  blogRepo,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		cache:     cache,
		publisher: publisher,
	}
}

func (s *BlogService) Create(ctx context.Context, input CreateBlogInput, ownerID string) (*model.Blog, error) {
	blog := &model.Blog{
		Title:  strings.TrimSpace(input.Title),
		Author: strings.TrimSpace(input.Author),
		URL:    strings.TrimSpace(input.URL),
		UserID: ownerID,
	}
	if input.Likes != nil {
		blog.Likes = *input.Likes
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerMissing
	}

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}

	s.afterMutation(ctx, model.BlogEventCreated, blog)
	return blog, nil
}

func (s *BlogService) List(ctx context.Context) ([]model.Blog, error) {
	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx); err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetBlogs(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}
	generation, cacheable := cacheGeneration(ctx, s.cache)

	blogs, err := s.blogRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if dirty, dirtyErr := s.cache.IsDirty(ctx); dirtyErr == nil && !dirty {
			if err := s.cache.SetBlogs(ctx, generation, blogs); err != nil {
				log.Warn().Err(err).Msg("cache blog list failed")
			}
		}
	}
	return blogs, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*model.Blog, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if blog == nil {
		return nil, ErrBlogNotFound
	}
	return blog, nil
}

// Update is open to any authenticated caller; only Delete checks ownership.
func (s *BlogService) Update(ctx context.Context, id string, input UpdateBlogInput) (*model.Blog, error) {
	blog, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		blog.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		blog.Author = strings.TrimSpace(*input.Author)
	}
	if input.URL != nil {
		blog.URL = strings.TrimSpace(*input.URL)
	}
	if input.Likes != nil {
		blog.Likes = *input.Likes
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}

	updated, err := s.blogRepo.Update(ctx, blog)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Deleted between the lookup and the write.
		return nil, ErrBlogNotFound
	}

	s.afterMutation(ctx, model.BlogEventUpdated, blog)
	return blog, nil
}

func (s *BlogService) Delete(ctx context.Context, id, requesterID string) error {
	blog, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if blog.UserID != requesterID {
		return ErrNotOwner
	}

	deleted, err := s.blogRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		// Removed concurrently between the lookup and the delete.
		return ErrBlogNotFound
	}

	s.afterMutation(ctx, model.BlogEventDeleted, blog)
	return nil
}

func (s *BlogService) Stats(ctx context.Context) (Stats, error) {
	blogs, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(blogs), nil
}

// Events returns the audit trail persisted by the event worker.
func (s *BlogService) Events(ctx context.Context, id string) ([]model.BlogEvent, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.eventRepo.ListByBlogID(ctx, id)
}

// afterMutation invalidates caches and publishes the event. Neither step can
// fail the request; the write has already happened.
func (s *BlogService) afterMutation(ctx context.Context, eventType string, blog *model.Blog) {
	invalidate(ctx, s.cache)

	if s.publisher == nil {
		return
	}
	event := model.BlogEvent{
		Type:       eventType,
		BlogID:     blog.ID,
		UserID:     blog.UserID,
		Likes:      blog.Likes,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", eventType).Str("blog_id", blog.ID).Msg("publish blog event failed")
	}
}

// cacheGeneration reports whether a list read now may be cached afterwards.
func cacheGeneration(ctx context.Context, cache ListCache) (int64, bool) {
	if cache == nil {
		return 0, false
	}
	generation, err := cache.Generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read list cache generation failed")
		return 0, false
	}
	return generation, true
}

func invalidate(ctx context.Context, cache ListCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("invalidate list cache failed")
	}
}

func validateBlog(blog *model.Blog) error {
	if blog.Title == "" {
		return ErrTitleRequired
	}
	if blog.URL == "" {
		return ErrURLRequired
	}
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrMalformedID
	}
	return nil
}
