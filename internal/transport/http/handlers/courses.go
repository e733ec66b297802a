package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/transport/http/middleware"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

// CourseHandler serves the course catalog and enrollment endpoints.
type CourseHandler struct {
	courses     *usecase.CourseService
	enrollments *usecase.EnrollmentService
	log         *zap.Logger
}

func NewCourseHandler(courses *usecase.CourseService, enrollments *usecase.EnrollmentService, log *zap.Logger) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments, log: log}
}

// List handles GET /api/courses.
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		views = append(views, newCourseView(course))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(views), "courses": views})
}

// Get handles GET /api/courses/:id.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": newCourseView(*course)})
}

// Create handles POST /api/courses. Admin only, enforced by middleware.
func (h *CourseHandler) Create(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "title and instructor are required"))
		return
	}

	course, err := h.courses.CreateCourse(c.Request.Context(), usecase.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Category:    req.Category,
		Duration:    req.Duration,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "course": newCourseView(*course)})
}

// Enroll handles POST /api/courses/:id/enroll.
func (h *CourseHandler) Enroll(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	enrollment, err := h.enrollments.Enroll(c.Request.Context(), accountID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "enrollment": newEnrollmentView(*enrollment)})
}

// MyCourses handles GET /api/courses/user/courses.
func (h *CourseHandler) MyCourses(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	items, err := h.enrollments.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]EnrolledCourseView, 0, len(items))
	for _, item := range items {
		views = append(views, newEnrolledCourseView(item))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(views), "courses": views})
}

// UpdateProgress handles PUT /api/courses/:id/progress.
func (h *CourseHandler) UpdateProgress(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Progress == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "progress is required"))
		return
	}

	enrollment, err := h.enrollments.UpdateProgress(c.Request.Context(), accountID, c.Param("id"), *req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "enrollment": newEnrollmentView(*enrollment)})
}
