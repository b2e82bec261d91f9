package models

import (
	"time"
)

// Reply belongs to exactly one Message, however deep it is nested.
// MessageID is always inherited from the parent when ParentReplyID is set.
type Reply struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ImageURL      string    `json:"image_url"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          *User     `gorm:"constraint:OnUpdate:CASCADE;" json:"user,omitempty"`
	MessageID     uint      `gorm:"not null;index" json:"message_id"`
	Message       *Message  `gorm:"constraint:OnUpdate:CASCADE;" json:"message,omitempty"`
	ParentReplyID *uint     `gorm:"index" json:"parent_reply_id"` // Nullable for top-level replies
	ParentReply   *Reply    `gorm:"foreignKey:ParentReplyID;constraint:OnUpdate:CASCADE;" json:"parent_reply,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r *Reply) Ref() ContentRef {
	return ReplyRef(r.ID)
}
