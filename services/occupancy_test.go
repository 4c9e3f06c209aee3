package services

import (
	"testing"
	"time"

	"myhotel/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockMySQL(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestForUpdateLocksOnMySQL(t *testing.T) {
	db, mock := newMockMySQL(t)
	mock.ExpectQuery("SELECT \\* FROM `rooms` WHERE .*room_type_id = \\?.* FOR UPDATE").
		WithArgs(uint(1), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "room_type_id", "is_available"}).
			AddRow(1, "101", 1, true))

	var rooms []models.Room
	require.NoError(t, forUpdate(db).Where("room_type_id = ? AND is_available = ?", uint(1), true).Find(&rooms).Error)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].RoomNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForUpdateSkipsSQLite(t *testing.T) {
	db := newTestDB(t)
	stmt := forUpdate(db).Session(&gorm.Session{DryRun: true}).Find(&[]models.Room{}).Statement
	assert.NotContains(t, stmt.SQL.String(), "FOR UPDATE")
}

func TestBusyRoomsQuery(t *testing.T) {
	db, mock := newMockMySQL(t)
	in := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 2)
	mock.ExpectQuery("SELECT DISTINCT `room_id` FROM `bookings` WHERE room_id IN \\(\\?,\\?\\) AND status IN \\(\\?,\\?\\) AND \\(check_in < \\? AND check_out > \\?\\) AND id <> \\?").
		WithArgs(uint(1), uint(2), "pending", "confirmed", out, in, uint(9)).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(2))

	busy, err := busyRooms(db, []uint{1, 2}, in, out, 9)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{2: true}, busy)
	require.NoError(t, mock.ExpectationsWereMet())

	empty, err := busyRooms(db, nil, in, out, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
