package models

import (
	"time"
)

type Room struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	HotelID    *uint  `gorm:"column:hotel_id;index" json:"hotel_id,omitempty"`
	RoomTypeID uint   `gorm:"column:room_type_id;index;not null" json:"room_type_id"`
	RoomNumber string `gorm:"column:room_number;uniqueIndex;type:varchar(10)" json:"room_number"`

	// IsAvailable is the administrative override. Bookings never touch it.
	IsAvailable bool `gorm:"column:is_available;not null" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SoftDelete

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
}
