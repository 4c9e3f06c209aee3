package models

import "time"

type Hotel struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:200" json:"name"`
	Address      string    `gorm:"type:text" json:"address"`
	ContactEmail string    `gorm:"size:150" json:"contact_email"`
	ContactPhone string    `gorm:"size:15" json:"contact_phone"`
	Description  string    `gorm:"type:text" json:"description"`
	Logo         string    `gorm:"size:255" json:"logo"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	SoftDelete
}

type HotelAmenity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IconName    string    `gorm:"size:200" json:"icon_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SoftDelete
}

type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:200" json:"name"`
	Email     string    `gorm:"size:150" json:"email"`
	Subject   string    `gorm:"size:400" json:"subject"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
	SoftDelete
}
