package models

import (
	"time"

	"gorm.io/datatypes"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// ActiveStatuses hold a room. Pending bookings block the room as firmly as
// confirmed ones.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo encodes pending -> confirmed, pending|confirmed -> cancelled.
// Nothing leaves cancelled.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

type Booking struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"reference_code"`
	RoomID        uint   `gorm:"column:room_id;index;not null" json:"room_id"`

	CheckIn  time.Time `gorm:"column:check_in;index" json:"check_in"`
	CheckOut time.Time `gorm:"column:check_out;index" json:"check_out"`
	Guests   int       `gorm:"column:guests" json:"guests"`

	// TotalPrice is derived from the room type rate and the night count on
	// every write.
	TotalPrice float64 `gorm:"column:total_price" json:"total_price"`
	// PaidNights is the night count at creation, the ceiling for edits.
	PaidNights int `gorm:"column:paid_nights" json:"paid_nights"`

	Status         BookingStatus `gorm:"column:status;size:30;index" json:"status"`
	SpecialRequest string        `gorm:"column:special_request;type:text" json:"special_request,omitempty"`

	TransactionID    *string        `gorm:"column:transaction_id;size:128" json:"transaction_id,omitempty"`
	PaymentReference *string        `gorm:"column:payment_reference;size:128;index" json:"payment_reference,omitempty"`
	PaymentPayload   datatypes.JSON `gorm:"column:payment_payload" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	SoftDelete

	Room Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (b Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}
