package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coursehub/coursehub-api/internal/core/domain"
	"github.com/coursehub/coursehub-api/internal/repository"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// RequireAuth extracts the session token from either the x-auth-token header
// or an Authorization: Bearer header, verifies it, and resolves the account.
// A valid token whose account no longer exists is rejected with 401 rather
// than surfacing as a server fault.
func RequireAuth(auth *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "not authorized to access this route"))
			return
		}

		account, err := auth.VerifySession(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "session token expired"))
			case errors.Is(err, usecase.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid session token"))
			case errors.Is(err, repository.ErrNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "not authorized to access this route"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(AccountIDKey, account.ID)
		c.Set(AccountKey, account)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.AccountID = account.ID
		}

		c.Next()
	}
}

// RequireRole checks that the authenticated account holds one of the given roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAuthenticatedAccount(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		for _, role := range roles {
			if account.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "insufficient permissions"))
	}
}

// GetAuthenticatedAccount retrieves the resolved account from context.
func GetAuthenticatedAccount(c *gin.Context) (*domain.Account, bool) {
	raw, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}

	account, ok := raw.(*domain.Account)
	if !ok {
		return nil, false
	}

	return account, true
}

// GetAuthenticatedAccountID retrieves the account ID from context (helper for handlers)
func GetAuthenticatedAccountID(c *gin.Context) (string, bool) {
	accountID, exists := c.Get(AccountIDKey)
	if !exists {
		return "", false
	}

	if id, ok := accountID.(string); ok {
		return id, true
	}

	return "", false
}

func extractToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader("x-auth-token")); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
