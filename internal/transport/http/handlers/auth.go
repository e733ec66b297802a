package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub-api/internal/transport/http/middleware"
	"github.com/coursehub/coursehub-api/internal/usecase"
)

// AuthHandler serves registration, login and identity endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth *usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "name, email and password are required"))
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Success: true,
		Token:   result.Token,
		User:    newAccountView(result.Account),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Success: true,
		Token:   result.Token,
		User:    newAccountView(result.Account),
	})
}

// CurrentUser handles GET /api/auth/user and GET /api/auth/me. The account
// was already resolved by the auth middleware, so no extra lookup happens.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	account, ok := middleware.GetAuthenticatedAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		Success: true,
		User:    newAccountView(*account),
	})
}

// UpdateDetails handles PUT /api/auth/updatedetails.
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request body"))
		return
	}

	account, err := h.auth.UpdateDetails(c.Request.Context(), accountID, req.Name, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		Success: true,
		User:    newAccountView(*account),
	})
}

// Logout handles GET /api/auth/logout. Tokens are stateless, so this is an
// acknowledgment that lets the client discard its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{
		Success: true,
		Message: "logged out",
	})
}
