package models

import "time"

// DefaultSharePlatform is recorded when the client does not name a platform.
const DefaultSharePlatform = "direct"

// Share records a post being shared. Shares are append-only and may repeat.
type Share struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	Platform  string    `gorm:"size:20;not null;default:'direct'" json:"platform"`
	CreatedAt time.Time `json:"created_at"`
}
