package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/core/port"
	"github.com/coursehub/coursehub-api/internal/repository"
)

// ErrAlreadyEnrolled indicates the account already holds an enrollment for the course.
var ErrAlreadyEnrolled = errors.New("already enrolled in this course")

// EnrollmentService manages course enrollments and progress tracking.
type EnrollmentService struct {
	enrollments port.EnrollmentRepository
	courses     port.CourseRepository
	log         *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs an enrollment service.
func NewEnrollmentService(enrollments port.EnrollmentRepository, courses port.CourseRepository, log *zap.Logger) *EnrollmentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EnrolledCourse pairs an enrollment with its catalog entry.
type EnrolledCourse struct {
	Enrollment domain.Enrollment
	Course     domain.Course
}

// Enroll registers the account for a course. Unknown courses surface
// repository.ErrNotFound; duplicate enrollments surface ErrAlreadyEnrolled.
func (s *EnrollmentService) Enroll(ctx context.Context, accountID, courseID string) (*domain.Enrollment, error) {
	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	now := s.now()
	enrollment := domain.Enrollment{
		AccountID:  accountID,
		CourseID:   courseID,
		Progress:   0,
		EnrolledAt: now,
		UpdatedAt:  now,
	}

	created, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	s.log.Info("account enrolled",
		zap.String("account_id", accountID),
		zap.String("course_id", courseID),
	)

	return created, nil
}

// ListForAccount returns the account's enrollments joined with their courses.
// Enrollments whose course was removed from the catalog are skipped.
func (s *EnrollmentService) ListForAccount(ctx context.Context, accountID string) ([]EnrolledCourse, error) {
	enrollments, err := s.enrollments.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	result := make([]EnrolledCourse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, err := s.courses.GetByID(ctx, enrollment.CourseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, EnrolledCourse{Enrollment: enrollment, Course: *course})
	}

	return result, nil
}

// UpdateProgress records the account's progress in a course. Progress is
// clamped to the 0-100 contract; 100 marks the course completed.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, accountID, courseID string, progress int) (*domain.Enrollment, error) {
	if progress < 0 || progress > 100 {
		return nil, &ValidationError{Field: "progress", Message: "must be between 0 and 100"}
	}

	enrollment, err := s.enrollments.GetByAccountAndCourse(ctx, accountID, courseID)
	if err != nil {
		return nil, err
	}

	completed := progress >= 100
	return s.enrollments.UpdateProgress(ctx, enrollment.ID, progress, completed)
}
