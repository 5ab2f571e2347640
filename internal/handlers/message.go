package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/services"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
)

type createMessageRequest struct {
	ConversationID   string   `json:"conversationId" binding:"required"`
	ReceiverID       string   `json:"receiverId" binding:"required"`
	Message          string   `json:"message"`
	NeedsTranslation bool     `json:"needsTranslation"`
	RepliedToMessage *string  `json:"repliedToMessage"`
	AttachmentIDs    []string `json:"attachmentIds"`
}

// CreateMessage accepts JSON or multipart form bodies. Multipart carries
// binary attachments under the "attachments" field, which take precedence
// over any attachment IDs in the request.
func CreateMessage(c *gin.Context) {
	senderID := c.MustGet("userId").(string)

	var input services.CreateMessageInput
	var files []*multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, apperrors.Validation("Invalid multipart form"))
			return
		}
		files = form.File["attachments"]

		input = services.CreateMessageInput{
			ConversationID:   c.PostForm("conversationId"),
			ReceiverID:       c.PostForm("receiverId"),
			Text:             c.PostForm("message"),
			NeedsTranslation: c.PostForm("needsTranslation") == "true",
			AttachmentIDs:    c.PostFormArray("attachmentIds"),
		}
		if replied := c.PostForm("repliedToMessage"); replied != "" {
			input.RepliedToMessageID = &replied
		}
		if input.ConversationID == "" || input.ReceiverID == "" {
			respondError(c, apperrors.Validation("conversationId and receiverId are required"))
			return
		}
	} else {
		var req createMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperrors.Validation("Invalid request body"))
			return
		}
		input = services.CreateMessageInput{
			ConversationID:     req.ConversationID,
			ReceiverID:         req.ReceiverID,
			Text:               req.Message,
			NeedsTranslation:   req.NeedsTranslation,
			RepliedToMessageID: req.RepliedToMessage,
			AttachmentIDs:      req.AttachmentIDs,
		}
	}
	input.SenderID = senderID

	view, err := Messaging.CreateMessage(c.Request.Context(), input, files)
	if err != nil {
		respondError(c, err)
		return
	}

	// Fan out to both participants' live connections after the write.
	if SocketServer != nil {
		emitToParticipants(SocketServer, view.SenderID, view.ReceiverID, "new_message", map[string]interface{}{
			"message": view,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"message": view})
}

// GetMessage returns one message with attachments resolved
func GetMessage(c *gin.Context) {
	view, err := Messaging.FindByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if view == nil {
		respondError(c, apperrors.NotFound("Message not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": view})
}

// GetConversationMessages returns a sorted page of a conversation's messages
func GetConversationMessages(c *gin.Context) {
	conversationID := c.Param("id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	sortBy := c.DefaultQuery("sortBy", "createdAt")
	sortOrder := c.DefaultQuery("sortOrder", "asc")

	result, err := Messaging.FindByConversationID(conversationID, page, pageSize, sortBy, sortOrder)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"messages":   result.Items,
		"pagination": result.Meta,
	})
}

type updateMessageRequest struct {
	UpdatedMessage   string `json:"updatedMessage" binding:"required"`
	NeedsTranslation bool   `json:"needsTranslation"`
}

// UpdateMessage replaces a message's content, re-running translation
func UpdateMessage(c *gin.Context) {
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("updatedMessage is required"))
		return
	}

	view, err := Messaging.UpdateContent(c.Request.Context(), c.Param("id"), req.UpdatedMessage, req.NeedsTranslation)
	if err != nil {
		respondError(c, err)
		return
	}

	if SocketServer != nil {
		emitToParticipants(SocketServer, view.SenderID, view.ReceiverID, "message_edited", map[string]interface{}{
			"message": view,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": view})
}

type toggleDeletionRequest struct {
	IsDeleted *bool `json:"isDeleted" binding:"required"`
}

// ToggleMessageDeletion flips the soft-delete flag
func ToggleMessageDeletion(c *gin.Context) {
	var req toggleDeletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Validation("isDeleted is required"))
		return
	}

	msg, err := Messaging.UpdateIsDeleted(c.Param("id"), *req.IsDeleted)
	if err != nil {
		respondError(c, err)
		return
	}

	if SocketServer != nil {
		emitToParticipants(SocketServer, msg.SenderID, msg.ReceiverID, "message_deletion_toggled", map[string]interface{}{
			"messageId": msg.ID,
			"isDeleted": msg.IsDeleted,
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// RemoveAttachment strips a media reference from every message and deletes
// the stored object
func RemoveAttachment(c *gin.Context) {
	if err := Messaging.RemoveAttachment(c.Request.Context(), c.Param("mediaId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
