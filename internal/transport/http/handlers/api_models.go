package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// LockedResponse is returned when login hits an active lockout window.
type LockedResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
	TraceID    string `json:"trace_id,omitempty"`
}

// MessageResponse represents a simple acknowledgment payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AccountView is the public subset of account fields safe to return to a
// client. The password hash and lockout counters are never part of it.
type AccountView struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func newAccountView(account domain.Account) AccountView {
	return AccountView{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      string(account.Role),
		CreatedAt: account.CreatedAt,
		LastLogin: account.LastLogin,
	}
}

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateDetailsRequest defines the payload for profile updates.
type UpdateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse describes the response for successful register/login calls.
type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    AccountView `json:"user"`
}

// UserResponse wraps the public account view for identity lookups.
type UserResponse struct {
	Success bool        `json:"success"`
	User    AccountView `json:"user"`
}

// CourseView is the public representation of a catalog entry.
type CourseView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Instructor  string    `json:"instructor"`
	Category    string    `json:"category,omitempty"`
	Duration    int       `json:"duration,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newCourseView(course domain.Course) CourseView {
	return CourseView{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Instructor:  course.Instructor,
		Category:    course.Category,
		Duration:    course.Duration,
		CreatedAt:   course.CreatedAt,
	}
}

// CreateCourseRequest defines the payload for adding a catalog entry.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Instructor  string `json:"instructor" binding:"required"`
	Category    string `json:"category"`
	Duration    int    `json:"duration"`
}

// EnrollmentView is the public representation of an enrollment record.
type EnrollmentView struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"courseId"`
	Progress   int       `json:"progress"`
	Completed  bool      `json:"completed"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

func newEnrollmentView(enrollment domain.Enrollment) EnrollmentView {
	return EnrollmentView{
		ID:         enrollment.ID,
		CourseID:   enrollment.CourseID,
		Progress:   enrollment.Progress,
		Completed:  enrollment.Completed,
		EnrolledAt: enrollment.EnrolledAt,
	}
}

// EnrolledCourseView joins an enrollment with its catalog entry.
type EnrolledCourseView struct {
	Course     CourseView     `json:"course"`
	Enrollment EnrollmentView `json:"enrollment"`
}

func newEnrolledCourseView(item usecase.EnrolledCourse) EnrolledCourseView {
	return EnrolledCourseView{
		Course:     newCourseView(item.Course),
		Enrollment: newEnrollmentView(item.Enrollment),
	}
}

// UpdateProgressRequest defines the payload for progress updates.
type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
