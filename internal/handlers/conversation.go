package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
)

type createConversationRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

// CreateConversation starts a new thread from the authenticated user
func CreateConversation(c *gin.Context) {
	senderID := c.MustGet("userId").(string)

	var req createConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("receiverId is required"))
		return
	}

	conv, err := Conversations.Create(senderID, req.ReceiverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"conversation": conv})
}

// GetMyConversations lists the authenticated user's threads, newest first
func GetMyConversations(c *gin.Context) {
	senderID := c.MustGet("userId").(string)

	conversations, err := Conversations.FindBySenderID(senderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversation fetches one thread with participant profiles resolved.
// Only a participant may read it.
func GetConversation(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	detail, err := Conversations.FindByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if detail.SenderID != userID && detail.ReceiverID != userID {
		respondError(c, apperrors.Unauthorized("Not a participant of this conversation"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversation": detail})
}

type updateLastMessageRequest struct {
	MessageID string `json:"messageId" binding:"required"`
	Text      string `json:"text"`
}

// UpdateLastMessage patches the denormalized last-message cache directly
func UpdateLastMessage(c *gin.Context) {
	var req updateLastMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("messageId is required"))
		return
	}

	if err := Conversations.UpdateLastMessage(c.Param("id"), req.MessageID, req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
