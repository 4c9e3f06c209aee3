package models

import (
	"time"
)

// Guest contact record. Email and phone are indexed for duplicate detection
// but not unique: duplicates are advisory.
type Guest struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID *uint     `gorm:"index;column:booking_id" json:"booking_id,omitempty"`
	FirstName string    `gorm:"size:50" json:"first_name"`
	LastName  string    `gorm:"size:50" json:"last_name"`
	Email     string    `gorm:"size:150;index" json:"email"`
	Phone     string    `gorm:"size:15;index" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SoftDelete

	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}
