package models

import (
	"time"
)

// User is a back-office principal.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FullName    string     `gorm:"size:255" json:"full_name"`
	Username    string     `gorm:"uniqueIndex;size:150" json:"username"`
	Password    string     `gorm:"size:255" json:"-"` // bcrypt hash, never returned
	IsSuperuser bool       `gorm:"column:is_superuser;not null" json:"is_superuser"`
	IsActive    bool       `gorm:"column:is_active;not null" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SoftDelete
}
