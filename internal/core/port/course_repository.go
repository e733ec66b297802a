package port

import (
	"context"

	"github.com/coursehub/coursehub-api/internal/core/domain"
)

// CourseRepository exposes persistence behavior for the course catalog.
type CourseRepository interface {
	Create(ctx context.Context, course domain.Course) (*domain.Course, error)
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
}

// EnrollmentRepository exposes persistence behavior for enrollments.
type EnrollmentRepository interface {
	// Create fails with repository.ErrConflict when the account is already
	// enrolled in the course.
	Create(ctx context.Context, enrollment domain.Enrollment) (*domain.Enrollment, error)
	GetByAccountAndCourse(ctx context.Context, accountID, courseID string) (*domain.Enrollment, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Enrollment, error)
	UpdateProgress(ctx context.Context, id string, progress int, completed bool) (*domain.Enrollment, error)
}
