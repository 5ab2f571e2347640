package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/services"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/logger"
)

var (
	Messaging     *services.MessagingService
	Conversations *services.ConversationService
	Presence      *services.PresenceRegistry
)

// InitServices injects the service layer once at startup.
func InitServices(messaging *services.MessagingService, conversations *services.ConversationService, presence *services.PresenceRegistry) {
	Messaging = messaging
	Conversations = conversations
	Presence = presence
}

// respondError writes the sanitized error envelope for a failure.
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message})
		return
	}
	logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled handler error")
	c.JSON(500, gin.H{"error": "Internal Server Error"})
}
