package models

import "time"

// User is the profile row backing the user directory. Account lifecycle
// (signup, credentials, membership) is owned by the identity service;
// this table only mirrors what chat views need.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}
