package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/handlers"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/middleware"
)

func RegisterPresenceRoutes(r gin.IRouter) {
	presence := r.Group("/presence")
	presence.Use(middleware.AuthMiddleware())
	{
		presence.GET("/online", handlers.GetOnlineUsers)
		presence.GET("/:id", handlers.GetUserOnlineStatus)
	}
}
