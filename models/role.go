package models

import "time"

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;uniqueIndex" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	IsActive    bool         `gorm:"column:is_active;not null" json:"is_active"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UserRole assigns a role to a user. One row per (user, role) pair.
type UserRole struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_user_role" json:"user_id"`
	RoleID      uint      `gorm:"not null;uniqueIndex:idx_user_role;index" json:"role_id"`
	GrantedByID *uint     `gorm:"column:granted_by_id" json:"granted_by_id,omitempty"`
	GrantedAt   time.Time `json:"granted_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
	Role Role `gorm:"foreignKey:RoleID" json:"role"`
}
