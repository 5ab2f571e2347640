package models

import "time"

// Media is the local bookkeeping row for a binary object held in external
// storage. The row is the attachment descriptor messages reference by ID.
type Media struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Mimetype  string    `json:"mimetype"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
