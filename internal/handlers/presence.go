package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetUserOnlineStatus reports whether a user has any live connection
func GetUserOnlineStatus(c *gin.Context) {
	userID := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"userId":   userID,
		"isOnline": Presence.IsOnline(userID),
	})
}

// GetOnlineUsers lists all users with at least one live connection
func GetOnlineUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": Presence.OnlineUsers()})
}
