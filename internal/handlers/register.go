package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskly/backend/internal/auth"
	"taskly/backend/internal/database"
	"taskly/backend/internal/services"
)

type RegisterHandler struct {
	connector       *database.Connector
	registerService services.RegisterService
	issuer          *auth.LocalIssuer
	logger          *zap.SugaredLogger
}

func NewRegisterHandler(connector *database.Connector, registerService services.RegisterService, issuer *auth.LocalIssuer, logger *zap.SugaredLogger) *RegisterHandler {
	return &RegisterHandler{connector: connector, registerService: registerService, issuer: issuer, logger: logger}
}

func (h *RegisterHandler) Register(c *gin.Context) {
	var req services.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Username, email and password are required",
		})
		return
	}

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	user, err := h.registerService.RegisterUser(db, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "duplicate_email",
				"message": "An account with this email already exists",
			})
		case errors.Is(err, services.ErrDuplicateUsername):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "duplicate_username",
				"message": "This username is already taken",
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

	c.JSON(http.StatusCreated, gin.H{
		"user":  userResponse(user),
		"token": token,
	})
}

func (h *RegisterHandler) serverError(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Errorw("registration failed", "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
