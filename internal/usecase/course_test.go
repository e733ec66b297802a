package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/repository"
)

type stubCourseRepo struct {
	courses  map[string]domain.Course
	order    []string
	nextID   int
	listHits int
}

func newStubCourseRepo() *stubCourseRepo {
	return &stubCourseRepo{courses: make(map[string]domain.Course)}
}

func (r *stubCourseRepo) Create(_ context.Context, course domain.Course) (*domain.Course, error) {
	r.nextID++
	course.ID = fmt.Sprintf("course-%d", r.nextID)
	r.courses[course.ID] = course
	r.order = append(r.order, course.ID)
	copy := course
	return &copy, nil
}

func (r *stubCourseRepo) GetByID(_ context.Context, id string) (*domain.Course, error) {
	if course, ok := r.courses[id]; ok {
		copy := course
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *stubCourseRepo) List(_ context.Context) ([]domain.Course, error) {
	r.listHits++
	result := make([]domain.Course, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.courses[id])
	}
	return result, nil
}

type stubCatalogCache struct {
	courses     []domain.Course
	populated   bool
	lastTTL     time.Duration
	invalidated int
	getErr      error
}

func (c *stubCatalogCache) GetCourses(context.Context) ([]domain.Course, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	if !c.populated {
		return nil, false, nil
	}
	return c.courses, true, nil
}

func (c *stubCatalogCache) SetCourses(_ context.Context, courses []domain.Course, ttl time.Duration) error {
	c.courses = courses
	c.populated = true
	c.lastTTL = ttl
	return nil
}

func (c *stubCatalogCache) Invalidate(context.Context) error {
	c.courses = nil
	c.populated = false
	c.invalidated++
	return nil
}

func TestListCoursesReadThroughCache(t *testing.T) {
	repo := newStubCourseRepo()
	cache := &stubCatalogCache{}
	svc := NewCourseService(repo, cache, time.Minute, nil)
	ctx := context.Background()

	if _, err := svc.CreateCourse(ctx, CourseInput{Title: "Intro to Go", Instructor: "Ann"}); err != nil {
		t.Fatalf("CreateCourse returned error: %v", err)
	}

	first, err := svc.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses returned error: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected one course, got %d", len(first))
	}
	if repo.listHits != 1 {
		t.Fatalf("expected one repository read, got %d", repo.listHits)
	}
	if cache.lastTTL != time.Minute {
		t.Fatalf("expected cache populated with ttl 1m, got %v", cache.lastTTL)
	}

	// Second listing is served from cache.
	if _, err := svc.ListCourses(ctx); err != nil {
		t.Fatalf("ListCourses returned error: %v", err)
	}
	if repo.listHits != 1 {
		t.Fatalf("expected cached listing to skip the repository, got %d reads", repo.listHits)
	}
}

func TestCreateCourseInvalidatesCache(t *testing.T) {
	repo := newStubCourseRepo()
	cache := &stubCatalogCache{}
	svc := NewCourseService(repo, cache, time.Minute, nil)
	ctx := context.Background()

	if _, err := svc.CreateCourse(ctx, CourseInput{Title: "Intro to Go", Instructor: "Ann"}); err != nil {
		t.Fatalf("CreateCourse returned error: %v", err)
	}
	if _, err := svc.ListCourses(ctx); err != nil {
		t.Fatalf("ListCourses returned error: %v", err)
	}

	if _, err := svc.CreateCourse(ctx, CourseInput{Title: "Advanced Go", Instructor: "Bob"}); err != nil {
		t.Fatalf("CreateCourse returned error: %v", err)
	}
	if cache.invalidated != 2 {
		t.Fatalf("expected cache invalidation on every create, got %d", cache.invalidated)
	}

	courses, err := svc.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses returned error: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected refreshed listing with 2 courses, got %d", len(courses))
	}
}

func TestListCoursesDegradesOnCacheFailure(t *testing.T) {
	repo := newStubCourseRepo()
	cache := &stubCatalogCache{getErr: errors.New("redis unavailable")}
	svc := NewCourseService(repo, cache, time.Minute, nil)
	ctx := context.Background()

	if _, err := svc.CreateCourse(ctx, CourseInput{Title: "Intro to Go", Instructor: "Ann"}); err != nil {
		t.Fatalf("CreateCourse returned error: %v", err)
	}

	courses, err := svc.ListCourses(ctx)
	if err != nil {
		t.Fatalf("expected fallback to repository, got %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected one course from repository, got %d", len(courses))
	}
}

func TestCreateCourseValidation(t *testing.T) {
	svc := NewCourseService(newStubCourseRepo(), nil, 0, nil)
	ctx := context.Background()

	cases := []CourseInput{
		{Title: "", Instructor: "Ann"},
		{Title: "Intro to Go", Instructor: ""},
		{Title: "Intro to Go", Instructor: "Ann", Duration: -3},
	}

	for _, input := range cases {
		_, err := svc.CreateCourse(ctx, input)
		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError for %+v, got %v", input, err)
		}
	}
}
