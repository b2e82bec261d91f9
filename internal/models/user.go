package models

import (
	"time"
)

type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Password    string    `gorm:"not null" json:"-"` // bcrypt hash
	DisplayName string    `gorm:"size:100;not null" json:"display_name"`
	Avatar      string    `json:"avatar"` // blob store URL, optional
	IsAdmin     bool      `gorm:"default:false;not null" json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	// No DeletedAt: users are removed physically by the cascade engine
}

// CanModify reports whether u may edit or delete something owned by ownerID.
func (u *User) CanModify(ownerID uint) bool {
	return u != nil && (u.IsAdmin || u.ID == ownerID)
}
