package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"bloglist-api/internal/model"
)

const (
	blogsKey = "bloglist:blogs"
	usersKey = "bloglist:users"
	dirtyKey = "bloglist:dirty"
	genKey   = "bloglist:generation"
)

var errStaleGeneration = errors.New("list generation changed")

// ListCache keeps the blog and user list responses in redis. A short-lived
// dirty marker set on every mutation stops readers from re-caching a list
// that was read while the write was in flight. The generation counter closes
// the remaining window: a list is stored only if no invalidation happened
// since the reader took its generation.
type ListCache struct {
	client         *redisv9.Client
	listTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewListCache(client *redisv9.Client, listTTL, dirtyMarkerTTL time.Duration) *ListCache {
	if listTTL <= 0 {
		listTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ListCache{
		client:         client,
		listTTL:        listTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ListCache) GetBlogs(ctx context.Context) ([]model.Blog, bool, error) {
	var blogs []model.Blog
	hit, err := c.get(ctx, blogsKey, &blogs)
	return blogs, hit, err
}

func (c *ListCache) SetBlogs(ctx context.Context, generation int64, blogs []model.Blog) error {
	return c.set(ctx, blogsKey, generation, blogs)
}

func (c *ListCache) GetUsers(ctx context.Context) ([]model.User, bool, error) {
	var users []model.User
	hit, err := c.get(ctx, usersKey, &users)
	return users, hit, err
}

func (c *ListCache) SetUsers(ctx context.Context, generation int64, users []model.User) error {
	return c.set(ctx, usersKey, generation, users)
}

// Generation must be read before loading a list from the database.
func (c *ListCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, genKey).Int64()
	if err == redisv9.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// Invalidate marks the lists dirty and drops both of them. Blog and user
// lists embed each other, so they are always invalidated together.
func (c *ListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("redis bump generation failed: %w", err)
	}
	if err := c.client.Set(ctx, dirtyKey, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	if err := c.client.Del(ctx, blogsKey, usersKey).Err(); err != nil {
		return fmt.Errorf("redis delete lists failed: %w", err)
	}
	return nil
}

func (c *ListCache) IsDirty(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, dirtyKey).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *ListCache) get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("unmarshal cached %s failed: %w", key, err)
	}
	return true, nil
}

// set stores value only while the generation still equals generation. A
// stale write is dropped silently.
func (c *ListCache) set(ctx context.Context, key string, generation int64, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	err = c.client.Watch(ctx, func(tx *redisv9.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redisv9.Nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.listTTL)
			return nil
		})
		return err
	}, genKey)

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redisv9.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set %s failed: %w", key, err)
	}
	return nil
}
