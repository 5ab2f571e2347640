package models

import "time"

type MessageType string

const (
	MessageTypeText  MessageType = "TEXT"
	MessageTypeMedia MessageType = "MEDIA"
)

type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "SENT"
	MessageStatusDelivered MessageStatus = "DELIVERED"
	MessageStatusRead      MessageStatus = "READ"
	MessageStatusFailed    MessageStatus = "FAILED"
)

// MessageContent is the multilingual payload of a text message. When the
// sender skipped translation, TranslationEn mirrors OriginalText and the
// other translations are empty strings, never absent.
type MessageContent struct {
	OriginalText   string `json:"originalText"`
	SourceLanguage string `json:"sourceLanguage"`
	TranslationEn  string `json:"translationEn"`
	TranslationFr  string `json:"translationFr"`
	TranslationEs  string `json:"translationEs"`
}

// Message is a direct message inside a conversation. ID, ConversationID,
// SenderID and ReceiverID never change after creation; everything else may.
type Message struct {
	ID                 string          `json:"id" gorm:"primaryKey"`
	ConversationID     string          `json:"conversationId" gorm:"index"`
	SenderID           string          `json:"senderId" gorm:"index"`
	ReceiverID         string          `json:"receiverId" gorm:"index"`
	Content            *MessageContent `json:"content" gorm:"serializer:json"`
	MessageType        MessageType     `json:"messageType"`
	Status             MessageStatus   `json:"status" gorm:"default:SENT"`
	ReadAt             *time.Time      `json:"readAt"`
	RepliedToMessageID *string         `json:"repliedToMessageId,omitempty"`
	Attachments        []string        `json:"attachments" gorm:"serializer:json"`
	IsDeleted          bool            `json:"isDeleted" gorm:"default:false"`
	IsInappropriate    bool            `json:"isInappropriate" gorm:"default:false"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}
