package models

import "time"

// ShortLink maps a random token to the URL it was minted for. Token is the
// durable unique key; OriginalURL is only indexed for get-or-create lookups.
type ShortLink struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Token       string    `json:"token" gorm:"uniqueIndex;size:32;not null"`
	OriginalURL string    `json:"original_url" gorm:"type:text;not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (ShortLink) TableName() string {
	return "short_links"
}
