package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/core/port"
)

const defaultCatalogTTL = 5 * time.Minute

// CourseService serves the public course catalog backed by a read-through cache.
type CourseService struct {
	courses  port.CourseRepository
	cache    port.CatalogCache
	cacheTTL time.Duration
	log      *zap.Logger
	now      func() time.Time
}

// NewCourseService constructs a course service. The cache is optional; a nil
// cache degrades to repository reads.
func NewCourseService(courses port.CourseRepository, cache port.CatalogCache, cacheTTL time.Duration, log *zap.Logger) *CourseService {
	if log == nil {
		log = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = defaultCatalogTTL
	}
	return &CourseService{
		courses:  courses,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CourseInput captures the fields needed to create a catalog entry.
type CourseInput struct {
	Title       string
	Description string
	Instructor  string
	Category    string
	Duration    int
}

// ListCourses returns the catalog, serving from cache when possible. Cache
// failures degrade to repository reads rather than failing the request.
func (s *CourseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.GetCourses(ctx)
		if err != nil {
			s.log.Warn("catalog cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCourses(ctx, courses, s.cacheTTL); err != nil {
			s.log.Warn("catalog cache write failed", zap.Error(err))
		}
	}

	return courses, nil
}

// GetCourse returns a single catalog entry.
func (s *CourseService) GetCourse(ctx context.Context, id string) (*domain.Course, error) {
	return s.courses.GetByID(ctx, id)
}

// CreateCourse adds a catalog entry and invalidates the cached listing.
func (s *CourseService) CreateCourse(ctx context.Context, input CourseInput) (*domain.Course, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Instructor = strings.TrimSpace(input.Instructor)

	if input.Title == "" {
		return nil, &ValidationError{Field: "title", Message: "is required"}
	}
	if input.Instructor == "" {
		return nil, &ValidationError{Field: "instructor", Message: "is required"}
	}
	if input.Duration < 0 {
		return nil, &ValidationError{Field: "duration", Message: "must not be negative"}
	}

	course := domain.Course{
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Instructor:  input.Instructor,
		Category:    strings.TrimSpace(input.Category),
		Duration:    input.Duration,
		CreatedAt:   s.now(),
	}

	created, err := s.courses.Create(ctx, course)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("catalog cache invalidation failed", zap.Error(err))
		}
	}

	return created, nil
}
