package models

import "time"

// Post is a status update created by a user. Comments, likes and shares are
// removed together with the post by the handler layer.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Image     *string   `gorm:"size:200" json:"image"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	User      User      `json:"-"`
	Comments  []Comment `json:"-"`
	Likes     []Like    `json:"-"`
	Shares    []Share   `json:"-"`
}
