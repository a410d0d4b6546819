// File: internal/dashboard/handler.go
package dashboard

import (
	"smart_advisor_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the dashboard endpoint.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new dashboard handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the dashboard route.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/dashboard", authMW, h.getDashboard)
}

// getDashboard always answers 200 for an authenticated user; partial
// provider failures are carried inside the view-model, not as HTTP errors.
func (h *Handler) getDashboard(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	vm := h.service.BuildDashboard(c.Request.Context(), userID)
	common.RespondOK(c, "Dashboard retrieved successfully.", vm)
}
