package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultProfilePicture is assigned to accounts that never uploaded one.
const DefaultProfilePicture = "default.jpg"

// User represents an account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email          string    `gorm:"size:120;not null;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	ProfilePicture string    `gorm:"size:200;default:'default.jpg'" json:"profile_picture"`
	Bio            string    `gorm:"type:text" json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	Posts          []Post    `json:"-"`
	Comments       []Comment `json:"-"`
	Likes          []Like    `json:"-"`
}

// BeforeCreate fills the profile picture when the caller left it blank.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ProfilePicture == "" {
		u.ProfilePicture = DefaultProfilePicture
	}
	return nil
}

// Summary is the author block embedded in posts and comments.
type Summary struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

// Summary returns the public author block for u.
func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}
