package port

import (
	"context"
	"time"

	"github.com/coursehub/coursehub-api/internal/core/domain"
)

// CatalogCache caches the public course listing. A miss is reported as
// (nil, false, nil) rather than an error so callers can fall through to the
// repository without special-casing.
type CatalogCache interface {
	GetCourses(ctx context.Context) ([]domain.Course, bool, error)
	SetCourses(ctx context.Context, courses []domain.Course, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
