package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/handlers"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/middleware"
)

func RegisterMessageRoutes(r gin.IRouter) {
	messages := r.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.POST("", middleware.ChatRateLimit(), handlers.CreateMessage)
		messages.GET("/:id", handlers.GetMessage)
		messages.PATCH("/:id", handlers.UpdateMessage)
		messages.PATCH("/:id/deletion", handlers.ToggleMessageDeletion)
	}

	attachments := r.Group("/attachments")
	attachments.Use(middleware.AuthMiddleware())
	{
		attachments.DELETE("/:mediaId", handlers.RemoveAttachment)
	}
}
