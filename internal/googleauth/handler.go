// File: internal/googleauth/handler.go
package googleauth

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"smart_advisor_backend/internal/common"
	"smart_advisor_backend/internal/config"
	"smart_advisor_backend/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the OAuth connect, callback, and revoke endpoints.
type Handler struct {
	cfg      *config.Config
	service  *Service
	notifier notification.Service
	logger   *zap.Logger
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(cfg *config.Config, service *Service, notifier notification.Service, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:      cfg,
		service:  service,
		notifier: notifier,
		logger:   logger,
	}
}

// RegisterRoutes sets up the Google OAuth routes. The callback is not behind
// the auth middleware; the provider redirect carries no bearer token, so the
// callback authenticates through the state cookie instead.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/google")
	{
		group.GET("/connect", authMW, h.connect)
		group.GET("/callback", h.callback)
		group.POST("/revoke", authMW, h.revoke)
	}
}

func (h *Handler) connect(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	state, err := generateAndSetOAuthState(c, h.cfg, userID)
	if err != nil {
		h.logger.Error("Failed to set OAuth state cookie", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not start Google Calendar connection. Please try again."))
		return
	}

	authURL, err := h.service.AuthorizationURL(state)
	if err != nil {
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Google Calendar integration is not configured correctly."))
		return
	}

	h.logger.Info("Initiating Google OAuth flow", zap.String("userID", userID.String()))
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) callback(c *gin.Context) {
	stateFromCookie, err := consumeOAuthCookie(c, h.cfg, h.cfg.OAuthStateCookieName)
	stateFromProvider := c.Query("state")
	if err != nil || stateFromCookie == "" ||
		subtle.ConstantTimeCompare([]byte(stateFromCookie), []byte(stateFromProvider)) != 1 {
		h.logger.Error("OAuth state mismatch",
			zap.Bool("cookie_present", err == nil), zap.String("provider_state", stateFromProvider))
		common.RespondWithError(c, common.ErrForbidden.WithDetails("Authentication failed due to a state mismatch. Please try connecting again."))
		return
	}

	userID, err := userIDFromState(stateFromCookie)
	if err != nil {
		h.logger.Error("OAuth state carried no usable identity", zap.Error(err))
		common.RespondWithError(c, common.ErrForbidden.WithDetails("Authentication failed. Please try connecting again."))
		return
	}

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Warn("Google OAuth callback returned an error",
			zap.String("error", providerErr), zap.String("userID", userID.String()))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(
			fmt.Sprintf("Google declined the connection: %s. Please try again.", providerErr)))
		return
	}

	code := c.Query("code")
	if code == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Authorization code missing from callback."))
		return
	}

	if err := h.service.Connect(c.Request.Context(), userID, code); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	h.notifier.Notify(c.Request.Context(), userID, notification.CalendarConnected, "Successfully connected to Google Calendar!")
	common.RespondOK(c, "Successfully connected to Google Calendar!", gin.H{"google_connected": true})
}

func (h *Handler) revoke(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("User ID not found in token."))
		return
	}

	outcome, err := h.service.Revoke(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to revoke Google connection", zap.Error(err), zap.String("userID", userID.String()))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not revoke Google Calendar access."))
		return
	}

	switch outcome {
	case RevokeOutcomeRevoked:
		h.notifier.Notify(c.Request.Context(), userID, notification.CalendarRevoked, "Google Calendar access revoked from Google.")
		common.RespondOK(c, "Google Calendar access revoked from Google.", gin.H{"google_connected": false})
	case RevokeOutcomeClearedOnly:
		h.notifier.Notify(c.Request.Context(), userID, notification.CalendarRevoked, "Local Google Calendar connection data cleared.")
		common.RespondOK(c, "Could not fully revoke the token with Google, but local access has been removed.", gin.H{"google_connected": false})
	default:
		common.RespondOK(c, "No Google Calendar connection was active.", gin.H{"google_connected": false})
	}
}
