package services

import (
	"context"
	"mime/multipart"
	"time"

	"gorm.io/gorm"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/logger"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/pagination"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/utils"
)

// AttachmentPlaceholder is the conversation preview text for messages that
// carry only attachments.
const AttachmentPlaceholder = "📎 Attachment"

const attachmentFolder = "wedding/chat"

// CreateMessageInput carries everything needed to persist a new message.
// Attachment IDs are used only when no binary files accompany the call.
type CreateMessageInput struct {
	ConversationID     string
	SenderID           string
	ReceiverID         string
	Text               string
	NeedsTranslation   bool
	RepliedToMessageID *string
	AttachmentIDs      []string
}

// MessageView is a message enriched for responses: attachment IDs resolved
// to descriptors and the replied-to reference expanded to the full prior
// message. The expansion is never persisted.
type MessageView struct {
	models.Message
	Attachments []models.Media  `json:"attachments"`
	RepliedTo   *models.Message `json:"repliedToMessage,omitempty"`
}

type MessagePage struct {
	Items []MessageView   `json:"items"`
	Meta  pagination.Meta `json:"pagination"`
}

// MessagingService is the only component that mutates message and
// conversation state. Both the REST surface and the realtime dispatcher
// go through it.
type MessagingService struct {
	db          *gorm.DB
	translator  Translator
	attachments AttachmentService
}

func NewMessagingService(db *gorm.DB, translator Translator, attachments AttachmentService) *MessagingService {
	return &MessagingService{db: db, translator: translator, attachments: attachments}
}

// CreateMessage persists a message and refreshes the parent conversation's
// last-message cache in one transaction. The conversation must already
// exist; creation is the caller's responsibility.
func (s *MessagingService) CreateMessage(ctx context.Context, input CreateMessageInput, files []*multipart.FileHeader) (*MessageView, error) {
	if input.Text == "" && len(files) == 0 && len(input.AttachmentIDs) == 0 {
		return nil, apperrors.Validation("Message text or attachments are required")
	}

	content, err := s.buildContent(ctx, input.Text, input.NeedsTranslation)
	if err != nil {
		return nil, err
	}

	// Binary uploads take precedence over attachment IDs supplied directly.
	attachmentIDs := input.AttachmentIDs
	if len(files) > 0 {
		attachmentIDs = nil
		for _, header := range files {
			file, err := header.Open()
			if err != nil {
				return nil, apperrors.Validation("Unreadable attachment file")
			}
			media, err := s.attachments.Upload(ctx, file, header, attachmentFolder)
			file.Close()
			if err != nil {
				return nil, err
			}
			attachmentIDs = append(attachmentIDs, media.ID)
		}
	}

	messageType := models.MessageTypeText
	if input.Text == "" && len(attachmentIDs) > 0 {
		messageType = models.MessageTypeMedia
	}

	now := time.Now()
	msg := models.Message{
		ID:                 utils.NewID(),
		ConversationID:     input.ConversationID,
		SenderID:           input.SenderID,
		ReceiverID:         input.ReceiverID,
		Content:            content,
		MessageType:        messageType,
		Status:             models.MessageStatusSent,
		RepliedToMessageID: input.RepliedToMessageID,
		Attachments:        attachmentIDs,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	preview := input.Text
	if preview == "" {
		preview = AttachmentPlaceholder
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, "id = ?", input.ConversationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("Conversation not found")
			}
			return apperrors.Internal("Failed to look up conversation")
		}

		if err := tx.Create(&msg).Error; err != nil {
			return apperrors.Internal("Failed to save message")
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", conv.ID).
			Updates(map[string]interface{}{
				"last_message_id": msg.ID,
				"last_message":    preview,
				"sender_id":       msg.SenderID,
				"receiver_id":     msg.ReceiverID,
				"updated_at":      now,
			}).Error
	})
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return nil, err
		}
		return nil, apperrors.Internal("Failed to update conversation")
	}

	invalidateConversationCache(msg.SenderID)
	return s.enrich(msg), nil
}

// FindByID fetches one message with attachments resolved. A missing
// message yields (nil, nil).
func (s *MessagingService) FindByID(id string) (*MessageView, error) {
	var msg models.Message
	if err := s.db.First(&msg, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to fetch message")
	}
	return s.enrich(msg), nil
}

// FindByConversationID returns one page of a conversation's messages with
// pagination metadata. Only createdAt is a meaningful sort field.
func (s *MessagingService) FindByConversationID(conversationID string, page, pageSize int, sortBy, sortOrder string) (*MessagePage, error) {
	page, pageSize = pagination.Normalize(page, pageSize)

	// Only createdAt is a meaningful sort field; any other value falls back
	// to it with the requested direction preserved.
	order := "created_at asc"
	if sortOrder == "desc" {
		order = "created_at desc"
	}

	var total int64
	if err := s.db.Model(&models.Message{}).Where("conversation_id = ?", conversationID).Count(&total).Error; err != nil {
		return nil, apperrors.Internal("Failed to count messages")
	}

	var messages []models.Message
	err := s.db.Where("conversation_id = ?", conversationID).
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, apperrors.Internal("Failed to fetch messages")
	}

	items, err := s.enrichPage(messages)
	if err != nil {
		return nil, err
	}

	return &MessagePage{
		Items: items,
		Meta:  pagination.NewMeta(page, pageSize, total),
	}, nil
}

// UpdateContent re-runs the translation pipeline on the new text and
// replaces the message content wholesale.
func (s *MessagingService) UpdateContent(ctx context.Context, id, text string, needsTranslation bool) (*MessageView, error) {
	if text == "" {
		return nil, apperrors.Validation("Updated message text is required")
	}

	var msg models.Message
	if err := s.db.First(&msg, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Message not found")
		}
		return nil, apperrors.Internal("Failed to fetch message")
	}

	content, err := s.buildContent(ctx, text, needsTranslation)
	if err != nil {
		return nil, err
	}

	msg.Content = content
	msg.UpdatedAt = time.Now()
	if err := s.db.Save(&msg).Error; err != nil {
		return nil, apperrors.Internal("Failed to update message")
	}

	return s.enrich(msg), nil
}

// UpdateIsDeleted flips the soft-delete flag and nothing else. Messages
// are never physically deleted.
func (s *MessagingService) UpdateIsDeleted(id string, isDeleted bool) (*models.Message, error) {
	var msg models.Message
	if err := s.db.First(&msg, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Message not found")
		}
		return nil, apperrors.Internal("Failed to fetch message")
	}

	if err := s.db.Model(&msg).Update("is_deleted", isDeleted).Error; err != nil {
		return nil, apperrors.Internal("Failed to update message")
	}
	msg.IsDeleted = isDeleted
	return &msg, nil
}

// MarkStatus records a delivery or read acknowledgment.
func (s *MessagingService) MarkStatus(id string, status models.MessageStatus) (*models.Message, error) {
	if status != models.MessageStatusDelivered && status != models.MessageStatusRead {
		return nil, apperrors.Validation("Status must be DELIVERED or READ")
	}

	var msg models.Message
	if err := s.db.First(&msg, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("Message not found")
		}
		return nil, apperrors.Internal("Failed to fetch message")
	}

	updates := map[string]interface{}{"status": status}
	if status == models.MessageStatusRead {
		now := time.Now()
		updates["read_at"] = &now
		msg.ReadAt = &now
	}
	if err := s.db.Model(&msg).Updates(updates).Error; err != nil {
		return nil, apperrors.Internal("Failed to update message status")
	}
	msg.Status = status
	return &msg, nil
}

// RemoveAttachment strips mediaID from every message referencing it, then
// deletes the underlying media. Each message update is independently
// atomic; the batch is best-effort. The storage delete runs last so a
// failure there leaves an orphaned blob rather than dangling references.
func (s *MessagingService) RemoveAttachment(ctx context.Context, mediaID string) error {
	var messages []models.Message
	// Attachment lists are stored as JSON arrays; containment reduces to a
	// quoted-substring match.
	err := s.db.Where(`attachments LIKE ?`, `%"`+mediaID+`"%`).Find(&messages).Error
	if err != nil {
		return apperrors.Internal("Failed to find messages referencing attachment")
	}

	for i := range messages {
		stripped := make([]string, 0, len(messages[i].Attachments))
		for _, id := range messages[i].Attachments {
			if id != mediaID {
				stripped = append(stripped, id)
			}
		}
		messages[i].Attachments = stripped
		if err := s.db.Save(&messages[i]).Error; err != nil {
			logger.Error().Err(err).Str("messageId", messages[i].ID).Msg("Failed to strip attachment reference")
			return apperrors.Internal("Failed to update message attachments")
		}
	}

	return s.attachments.Delete(ctx, mediaID)
}

// buildContent runs the translation pipeline. With translation disabled
// the source defaults to English, TranslationEn mirrors the input and the
// remaining translations stay empty strings.
func (s *MessagingService) buildContent(ctx context.Context, text string, needsTranslation bool) (*models.MessageContent, error) {
	if text == "" {
		return nil, nil
	}

	if !needsTranslation {
		return &models.MessageContent{
			OriginalText:   text,
			SourceLanguage: LanguageEnglish,
			TranslationEn:  text,
			TranslationFr:  "",
			TranslationEs:  "",
		}, nil
	}

	result, err := s.translator.Translate(ctx, text)
	if err != nil {
		return nil, err
	}
	return &models.MessageContent{
		OriginalText:   text,
		SourceLanguage: result.SourceLanguage,
		TranslationEn:  result.TranslationEn,
		TranslationFr:  result.TranslationFr,
		TranslationEs:  result.TranslationEs,
	}, nil
}

// enrich resolves one message's attachments and replied-to reference.
// Resolution is best-effort: missing attachments are dropped, a missing
// reply target leaves the expansion empty.
func (s *MessagingService) enrich(msg models.Message) *MessageView {
	view := MessageView{Message: msg, Attachments: []models.Media{}}

	if len(msg.Attachments) > 0 {
		if media, err := s.attachments.FindByIDs(msg.Attachments); err == nil {
			view.Attachments = media
		} else {
			logger.Warn().Err(err).Str("messageId", msg.ID).Msg("Attachment resolution failed")
		}
	}

	if msg.RepliedToMessageID != nil {
		var replied models.Message
		if err := s.db.First(&replied, "id = ?", *msg.RepliedToMessageID).Error; err == nil {
			view.RepliedTo = &replied
		}
	}
	return &view
}

// enrichPage batch-resolves attachments and reply targets for a whole page
// with one media lookup and one message lookup.
func (s *MessagingService) enrichPage(messages []models.Message) ([]MessageView, error) {
	attachmentIDs := make([]string, 0)
	repliedIDs := make([]string, 0)
	seenAttachment := make(map[string]bool)
	seenReplied := make(map[string]bool)

	for i := range messages {
		for _, id := range messages[i].Attachments {
			if !seenAttachment[id] {
				seenAttachment[id] = true
				attachmentIDs = append(attachmentIDs, id)
			}
		}
		if rid := messages[i].RepliedToMessageID; rid != nil && !seenReplied[*rid] {
			seenReplied[*rid] = true
			repliedIDs = append(repliedIDs, *rid)
		}
	}

	mediaByID := make(map[string]models.Media)
	if len(attachmentIDs) > 0 {
		media, err := s.attachments.FindByIDs(attachmentIDs)
		if err != nil {
			return nil, err
		}
		for _, m := range media {
			mediaByID[m.ID] = m
		}
	}

	repliedByID := make(map[string]models.Message)
	if len(repliedIDs) > 0 {
		var replied []models.Message
		if err := s.db.Where("id IN ?", repliedIDs).Find(&replied).Error; err != nil {
			return nil, apperrors.Internal("Failed to resolve replied-to messages")
		}
		for _, r := range replied {
			repliedByID[r.ID] = r
		}
	}

	views := make([]MessageView, 0, len(messages))
	for i := range messages {
		view := MessageView{Message: messages[i], Attachments: []models.Media{}}
		for _, id := range messages[i].Attachments {
			if m, ok := mediaByID[id]; ok {
				view.Attachments = append(view.Attachments, m)
			}
		}
		if rid := messages[i].RepliedToMessageID; rid != nil {
			if r, ok := repliedByID[*rid]; ok {
				replied := r
				view.RepliedTo = &replied
			}
		}
		views = append(views, view)
	}
	return views, nil
}
