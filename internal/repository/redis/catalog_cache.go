package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/coursehub/coursehub-api/internal/core/domain"
)

const defaultCatalogKey = "lms:catalog:courses"

// CatalogCache stores the serialized course listing in Redis so the public
// catalog endpoint does not hit MongoDB on every page load.
type CatalogCache struct {
	client *red.Client
	key    string
}

// NewCatalogCache constructs a catalog cache helper.
func NewCatalogCache(client *red.Client, key string) *CatalogCache {
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultCatalogKey
	}

	return &CatalogCache{client: client, key: key}
}

// GetCourses fetches the cached listing. A miss returns (nil, false, nil).
func (c *CatalogCache) GetCourses(ctx context.Context) ([]domain.Course, bool, error) {
	value, err := c.client.Get(ctx, c.key).Result()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get catalog: %w", err)
	}

	var courses []domain.Course
	if err := json.Unmarshal([]byte(value), &courses); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}

	return courses, true, nil
}

// SetCourses stores the listing with the supplied TTL.
func (c *CatalogCache) SetCourses(ctx context.Context, courses []domain.Course, ttl time.Duration) error {
	payload, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := c.client.Set(ctx, c.key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog: %w", err)
	}
	return nil
}

// Invalidate drops the cached listing. Called after catalog writes.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("redis delete catalog: %w", err)
	}
	return nil
}
