package models

import "time"

// Conversation is a thread between two participants. LastMessageID and
// LastMessage cache the most recently persisted message for list views;
// when two writes race, whichever commits last wins.
type Conversation struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	SenderID      string    `json:"senderId" gorm:"index"`
	ReceiverID    string    `json:"receiverId" gorm:"index"`
	LastMessageID *string   `json:"lastMessageId"`
	LastMessage   string    `json:"lastMessage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
