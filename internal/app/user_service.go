package app

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"bloglist-api/internal/model"
	"bloglist-api/internal/repository"
)

const (
	minUsernameLength = 3
	minPasswordLength = 3
)

type UserService struct {
	userRepo *repository.UserRepository
	cache    ListCache
}

type RegisterInput struct {
	Username string
	Name     string
	Password string
}

func NewUserService(userRepo *repository.UserRepository, cache ListCache) *UserService {
	return &UserService{userRepo: userRepo, cache: cache}
}

// Register validates the input, hashes the password and stores the user.
// Password rules are checked before username rules.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if utf8.RuneCountInString(username) < minUsernameLength {
		return nil, ErrUsernameTooShort
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	invalidate(ctx, s.cache)
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	if s.cache != nil {
		if dirty, err := s.cache.IsDirty(ctx); err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetUsers(ctx); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}
	generation, cacheable := cacheGeneration(ctx, s.cache)

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if dirty, dirtyErr := s.cache.IsDirty(ctx); dirtyErr == nil && !dirty {
			if err := s.cache.SetUsers(ctx, generation, users); err != nil {
				log.Warn().Err(err).Msg("cache user list failed")
			}
		}
	}
	return users, nil
}
