package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskly/backend/internal/database"
	"taskly/backend/internal/services"
)

// IDTokenVerifier validates an external identity provider token and yields
// the subject and email claims.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (sub, email string, err error)
}

type FederatedHandler struct {
	connector        *database.Connector
	verifier         IDTokenVerifier
	federatedService services.FederatedService
	logger           *zap.SugaredLogger
}

type FederatedRequest struct {
	Token string `json:"token" binding:"required"`
}

func NewFederatedHandler(connector *database.Connector, verifier IDTokenVerifier, federatedService services.FederatedService, logger *zap.SugaredLogger) *FederatedHandler {
	return &FederatedHandler{connector: connector, verifier: verifier, federatedService: federatedService, logger: logger}
}

func (h *FederatedHandler) Login(c *gin.Context) {
	var req FederatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Token is required",
		})
		return
	}

	sub, email, err := h.verifier.VerifyIDToken(c.Request.Context(), req.Token)
	if err != nil || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "invalid_token",
			"message": "Federated authentication failed",
		})
		return
	}

	db, err := h.connector.Acquire(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}

	user, err := h.federatedService.UpsertFederatedUser(db, sub, email)
	if err != nil {
		h.serverError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
}

func (h *FederatedHandler) serverError(c *gin.Context, err error) {
	if h.logger != nil {
		h.logger.Errorw("federated login failed", "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
