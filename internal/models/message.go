package models

import (
	"time"
)

// Message is a root post inside a channel.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"` // sanitized on write
	ImageURL  string    `json:"image_url"`                         // Optional
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"constraint:OnUpdate:CASCADE;" json:"user,omitempty"`
	ChannelID uint      `gorm:"not null;index" json:"channel_id"`
	Channel   *Channel  `gorm:"constraint:OnUpdate:CASCADE;" json:"channel,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *Message) Ref() ContentRef {
	return MessageRef(m.ID)
}
