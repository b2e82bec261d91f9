package models

import (
	"time"
)

// Rating is a vote on a message or a reply. ContentID is deliberately not a
// foreign key: it points into one of two tables depending on ContentType, so
// removing rated content must also remove its ratings explicitly.
type Rating struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_rating_voter" json:"user_id"`
	User        *User       `gorm:"constraint:OnUpdate:CASCADE;" json:"user,omitempty"`
	ContentID   uint        `gorm:"not null;uniqueIndex:idx_rating_voter;index:idx_rating_content" json:"content_id"`
	ContentType ContentKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_rating_voter;index:idx_rating_content" json:"content_type"`
	IsPositive  bool        `gorm:"not null" json:"is_positive"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (r *Rating) Ref() ContentRef {
	return ContentRef{Kind: r.ContentType, ID: r.ContentID}
}
