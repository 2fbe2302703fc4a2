package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskly/backend/internal/auth"
	"taskly/backend/internal/database"
	"taskly/backend/internal/models"
	"taskly/backend/internal/services"
)

type AuthHandler struct {
	connector   *database.Connector
	authService services.AuthService
	issuer      *auth.LocalIssuer
	logger      *zap.SugaredLogger
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the client-facing user shape; it never carries the
// password hash.
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username,omitempty"`
	AuthMethod string `json:"authMethod"`
}

func NewAuthHandler(connector *database.Connector, authService services.AuthService, issuer *auth.LocalIssuer, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{connector: connector, authService: authService, issuer: issuer, logger: logger}
}

func userResponse(user *models.User) UserResponse {
	resp := UserResponse{
		ID:         user.ID.String(),
		Email:      user.Email,
		AuthMethod: string(user.AuthMethod),
	}
	if user.Username != nil {
		resp.Username = *user.Username
	}
	return resp
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Email and password are required",
		})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	user, err := h.authService.LoginUser(db, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFederatedOnly):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "federated_account",
				"message": "This account signs in with a federated identity provider",
			})
		case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "Invalid email or password",
			})
		default:
			h.serverError(c, err)
		}
		return
	}

	token, err := h.issuer.IssueToken(user.PrincipalID())
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  userResponse(user),
		"token": token,
	})
}

func (h *AuthHandler) serverError(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Errorw("auth request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
