package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/coursehub-api/internal/repository"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

// respondError maps service errors to HTTP status codes and writes the body.
func respondError(c *gin.Context, err error) {
	var validationErr *usecase.ValidationError
	var lockedErr *usecase.AccountLockedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, validationErr.Error()))
	case errors.As(err, &lockedErr):
		c.JSON(http.StatusLocked, LockedResponse{
			Error:      "account locked, please try again later",
			RetryAfter: lockedErr.RetryAfterSeconds(),
			TraceID:    GetTraceID(c),
		})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid credentials"))
	case errors.Is(err, usecase.ErrEmailTaken):
		c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
	case errors.Is(err, usecase.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "token expired"))
	case errors.Is(err, usecase.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid token"))
	case errors.Is(err, usecase.ErrAlreadyEnrolled):
		c.JSON(http.StatusConflict, NewErrorResponse(c, "already enrolled in this course"))
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "resource not found"))
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, NewErrorResponse(c, "resource already exists"))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal server error"))
	}
}

// GetTraceID retrieves the trace ID placed on the context by middleware.
func GetTraceID(c *gin.Context) string {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)
	return traceIDStr
}
