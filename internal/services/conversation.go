package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/database"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/logger"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/utils"
)

const conversationCacheTTL = 30 * time.Second

// ConversationDetail is a conversation with both participant profiles
// resolved through the user directory.
type ConversationDetail struct {
	models.Conversation
	Sender   *models.User `json:"sender"`
	Receiver *models.User `json:"receiver"`
}

type ConversationService struct {
	db        *gorm.DB
	directory UserDirectory
}

func NewConversationService(db *gorm.DB, directory UserDirectory) *ConversationService {
	return &ConversationService{db: db, directory: directory}
}

// Create inserts a new thread between the two participants. Nothing stops
// a second thread for the same pair; callers are expected to reuse the
// conversation they already hold.
func (s *ConversationService) Create(senderID, receiverID string) (*models.Conversation, error) {
	if senderID == "" || receiverID == "" {
		return nil, apperrors.Validation("Both sender and receiver are required")
	}

	conv := models.Conversation{
		ID:         utils.NewID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := s.db.Create(&conv).Error; err != nil {
		return nil, apperrors.Internal("Failed to create conversation")
	}

	invalidateConversationCache(senderID)
	return &conv, nil
}

// FindBySenderID lists the user's threads, most recently updated first.
func (s *ConversationService) FindBySenderID(senderID string) ([]models.Conversation, error) {
	cacheKey := fmt.Sprintf("conversations:%s", senderID)
	if database.Redis != nil {
		var cached []models.Conversation
		if err := database.CacheGet(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	var conversations []models.Conversation
	err := s.db.Where("sender_id = ?", senderID).
		Order("updated_at desc").
		Find(&conversations).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch conversations")
	}

	if database.Redis != nil {
		if err := database.CacheSet(cacheKey, conversations, conversationCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache conversation list")
		}
	}
	return conversations, nil
}

// FindByID fetches one thread with both participant profiles resolved.
func (s *ConversationService) FindByID(id string) (*ConversationDetail, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Conversation not found")
		}
		return nil, apperrors.Internal("Failed to fetch conversation")
	}

	detail := ConversationDetail{Conversation: conv}
	if sender, err := s.directory.FindByID(conv.SenderID); err == nil {
		detail.Sender = sender
	}
	if receiver, err := s.directory.FindByID(conv.ReceiverID); err == nil {
		detail.Receiver = receiver
	}
	return &detail, nil
}

// UpdateLastMessage patches only the denormalized last-message cache.
// Callers using this directly (outside message creation) are responsible
// for keeping it consistent with the message store.
func (s *ConversationService) UpdateLastMessage(id, messageID, text string) error {
	result := s.db.Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"last_message":    text,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return apperrors.Internal("Failed to update conversation")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Conversation not found")
	}

	var conv models.Conversation
	if err := s.db.Select("sender_id").First(&conv, "id = ?", id).Error; err == nil {
		invalidateConversationCache(conv.SenderID)
	}
	return nil
}

func invalidateConversationCache(senderID string) {
	if database.Redis == nil {
		return
	}
	if err := database.CacheInvalidate(fmt.Sprintf("conversations:%s", senderID)); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate conversation cache")
	}
}
