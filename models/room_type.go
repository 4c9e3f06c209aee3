package models

import (
	"time"
)

// RoomType is a room category: every room of a type shares its nightly
// price, capacity and amenities.
type RoomType struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"size:200;uniqueIndex" json:"name"`
	Description  string        `gorm:"type:text" json:"description"`
	BasePrice    float64       `gorm:"column:base_price" json:"base_price"`
	DisplayPrice string        `gorm:"size:300" json:"display_price,omitempty"`
	Capacity     uint          `gorm:"column:capacity" json:"capacity"`
	Amenities    []RoomAmenity `gorm:"many2many:room_type_amenities" json:"amenities"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	SoftDelete
}

type RoomAmenity struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SoftDelete
}
