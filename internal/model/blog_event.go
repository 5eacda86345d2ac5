package model

import "time"

const (
	BlogEventCreated = "blog.created"
	BlogEventUpdated = "blog.updated"
	BlogEventDeleted = "blog.deleted"
)

// BlogEvent is the audit record of a blog mutation, delivered through the
// message queue and persisted by the event worker.
type BlogEvent struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Type       string    `gorm:"size:32;not null;index" json:"type"`
	BlogID     string    `gorm:"type:varchar(36);not null;index" json:"blog_id"`
	UserID     string    `gorm:"type:varchar(36);not null" json:"user_id"`
	Likes      int       `json:"likes"`
	OccurredAt time.Time `gorm:"not null" json:"occurred_at"`
}
