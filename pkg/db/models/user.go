package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record. The auth store proper belongs to another
// service; this surface exists for ownership checks and guest-order claiming.
type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"column:name;not null" json:"name"`
	Email        string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false" json:"isAdmin"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
