package services

import (
	"fmt"
	"time"

	"myhotel/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func activeStatusValues() []string {
	out := make([]string, 0, len(models.ActiveStatuses))
	for _, s := range models.ActiveStatuses {
		out = append(out, string(s))
	}
	return out
}

// busyRooms returns the rooms among roomIDs that hold a live active booking
// overlapping [checkIn, checkOut). excludeBookingID skips one booking, used
// when a booking is re-validated against everything but itself.
func busyRooms(db *gorm.DB, roomIDs []uint, checkIn, checkOut time.Time, excludeBookingID uint) (map[uint]bool, error) {
	busy := map[uint]bool{}
	if len(roomIDs) == 0 {
		return busy, nil
	}
	q := db.Model(&models.Booking{}).
		Where("room_id IN ?", roomIDs).
		Where("status IN ?", activeStatusValues()).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	var ids []uint
	if err := q.Distinct().Pluck("room_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		busy[id] = true
	}
	return busy, nil
}

// oversizedBookings counts live active bookings on roomIDs that carry more
// guests than capacity.
func oversizedBookings(db *gorm.DB, roomIDs []uint, capacity uint) (int64, error) {
	if len(roomIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := db.Model(&models.Booking{}).
		Where("room_id IN ?", roomIDs).
		Where("status IN ?", activeStatusValues()).
		Where("guests > ?", capacity).
		Count(&n).Error
	return n, err
}

func capacityConflict(n int64, capacity uint) error {
	return Invariant("capacity_conflict",
		fmt.Sprintf("%d active booking(s) have more guests than the new capacity of %d.", n, capacity))
}

// bookableRoomsQuery selects live rooms of a type with the availability flag on.
func bookableRoomsQuery(db *gorm.DB, roomTypeID uint) *gorm.DB {
	return db.Model(&models.Room{}).
		Where("room_type_id = ? AND is_available = ?", roomTypeID, true).
		Order("id ASC")
}

// forUpdate adds a row lock on dialects that support SELECT ... FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector != nil && tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
