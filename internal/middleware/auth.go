// File: internal/middleware/auth.go
package middleware

import (
	"smart_advisor_backend/internal/common"
	"smart_advisor_backend/internal/firebase"
	"smart_advisor_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the Firebase bearer token and resolves the local
// user, creating one on first sight of a verified token.
func AuthMiddleware(firebaseService *firebase.FirebaseService, userService shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		firebaseToken, err := firebaseService.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired authentication token."))
			return
		}

		usr, wasCreated, err := userService.GetOrCreateUserFromFirebaseClaims(c.Request.Context(), firebaseToken)
		if err != nil {
			logger.Error("Failed to resolve local user from Firebase claims",
				zap.Error(err), zap.String("firebaseUID", firebaseToken.UID))
			common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not resolve user account."))
			return
		}
		if wasCreated {
			logger.Info("Local user provisioned on first authenticated request",
				zap.String("userID", usr.ID.String()), zap.String("firebaseUID", firebaseToken.UID))
		}

		c.Set(common.UserIDKey, usr.ID)
		if usr.Email != nil {
			c.Set(common.UserEmailKey, *usr.Email)
		}
		c.Set(common.FirebaseUIDKey, firebaseToken.UID)

		c.Next()
	}
}
