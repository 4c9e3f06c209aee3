package services

import (
	"context"
	"testing"
	"time"

	"myhotel/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// today is the fixed clock for every service under test.
var today = time.Date(2025, 2, 1, 10, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.UserRole{},
		&models.Hotel{},
		&models.HotelAmenity{},
		&models.RoomAmenity{},
		&models.RoomType{},
		&models.Room{},
		&models.Booking{},
		&models.Guest{},
		&models.ContactMessage{},
	))
	return db
}

type fixture struct {
	DB           *gorm.DB
	Ledger       *Ledger
	Availability *AvailabilityService
	Bookings     *BookingService
	Inventory    *InventoryService
	Guests       *GuestService
	Standard     models.RoomType
	R1           models.Room
}

// newFixture seeds a "Standard" room type (capacity 2, rate 100) with room
// R1 and wires the services to a fixed clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	ledger := NewLedger(db)
	ledger.Now = fixedNow

	f := &fixture{
		DB:           db,
		Ledger:       ledger,
		Availability: NewAvailabilityService(db, nil),
		Bookings:     NewBookingService(db, ledger, nil),
		Inventory:    NewInventoryService(db, ledger, nil),
		Guests:       NewGuestService(db, ledger, nil),
	}
	f.Availability.Now = fixedNow
	f.Bookings.Now = fixedNow

	ctx := context.Background()
	wifi, err := f.Inventory.CreateRoomAmenity(ctx, AmenityInput{Name: "Wi-Fi"})
	require.NoError(t, err)
	f.Standard, err = f.Inventory.CreateRoomType(ctx, RoomTypeInput{
		Name: "Standard", BasePrice: 100, Capacity: 2, AmenityIDs: []uint{wifi.ID},
	})
	require.NoError(t, err)
	f.R1 = f.addRoom(t, "R1", f.Standard.ID)
	return f
}

func (f *fixture) addRoom(t *testing.T, number string, roomTypeID uint) models.Room {
	t.Helper()
	room, err := f.Inventory.CreateRoom(context.Background(), RoomInput{RoomNumber: number, RoomTypeID: roomTypeID})
	require.NoError(t, err)
	return room
}

func guestInfo() GuestInfo {
	return GuestInfo{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Phone: "0800000000"}
}

// staffBooking books roomID directly without payment.
func (f *fixture) staffBooking(roomID uint, in, out string, guests int, status models.BookingStatus) ([]models.Booking, error) {
	return f.Bookings.Create(context.Background(), CreateBookingRequest{
		RoomID:   roomID,
		CheckIn:  in,
		CheckOut: out,
		Guests:   guests,
		Guest:    guestInfo(),
		Status:   status,
	})
}

func (f *fixture) mustBook(t *testing.T, roomID uint, in, out string, guests int) models.Booking {
	t.Helper()
	created, err := f.staffBooking(roomID, in, out, guests, models.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, created, 1)
	return created[0]
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	se := AsError(err)
	require.Equal(t, kind, se.Kind, "unexpected error: %v", err)
	return se
}
