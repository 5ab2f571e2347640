package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/handlers"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/middleware"
)

func RegisterConversationRoutes(r gin.IRouter) {
	conversations := r.Group("/conversations")
	conversations.Use(middleware.AuthMiddleware())
	{
		conversations.POST("", handlers.CreateConversation)
		conversations.GET("", handlers.GetMyConversations)
		conversations.GET("/:id", handlers.GetConversation)
		conversations.GET("/:id/messages", handlers.GetConversationMessages)
		conversations.PATCH("/:id/last-message", handlers.UpdateLastMessage)
	}
}
