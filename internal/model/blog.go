package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog is a bookmarked post. User is only set when the owner was preloaded.
type Blog struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	Author    string    `gorm:"size:256" json:"author"`
	URL       string    `gorm:"size:2048;not null" json:"url"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Blog) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
