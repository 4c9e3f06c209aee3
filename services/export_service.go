package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"myhotel/models"
	"myhotel/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const bookingSheet = "Bookings"

var bookingExportHeaders = []string{
	"Reference", "Room", "Room Type", "Guest", "Email", "Phone",
	"Check-in", "Check-out", "Nights", "Guests", "Total", "Status", "Transaction", "Created",
}

// ExportService renders back-office reports.
type ExportService struct {
	Bookings *BookingService
	Guests   *GuestService
	Log      *zap.Logger
}

func NewExportService(bookings *BookingService, guests *GuestService, log *zap.Logger) *ExportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportService{Bookings: bookings, Guests: guests, Log: log}
}

// BookingsXLSX writes the bookings matching f to an .xlsx workbook.
func (s *ExportService) BookingsXLSX(ctx context.Context, f ListBookingsFilter) ([]byte, error) {
	f.Limit, f.Offset = 0, 0
	bookings, _, err := s.Bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	primary := map[uint]models.Guest{}
	for _, b := range bookings {
		guests, err := s.Guests.ByBooking(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if len(guests) > 0 {
			primary[b.ID] = guests[0]
		}
	}

	x := excelize.NewFile()
	defer func() {
		if err := x.Close(); err != nil {
			s.Log.Warn("failed to close workbook", zap.Error(err))
		}
	}()
	index, err := x.NewSheet(bookingSheet)
	if err != nil {
		return nil, Internal(fmt.Errorf("create sheet: %w", err))
	}
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return nil, Internal(err)
	}
	x.SetActiveSheet(index)

	headerStyle, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, Internal(fmt.Errorf("header style: %w", err))
	}
	for i, h := range bookingExportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, Internal(err)
		}
		if err := x.SetCellValue(bookingSheet, cell, h); err != nil {
			return nil, Internal(err)
		}
		if err := x.SetCellStyle(bookingSheet, cell, cell, headerStyle); err != nil {
			return nil, Internal(err)
		}
	}
	if err := x.SetColWidth(bookingSheet, "A", "N", 16); err != nil {
		return nil, Internal(err)
	}

	for i, b := range bookings {
		g := primary[b.ID]
		txID := ""
		if b.TransactionID != nil {
			txID = *b.TransactionID
		}
		row := []interface{}{
			b.ReferenceCode,
			b.Room.RoomNumber,
			b.Room.RoomType.Name,
			strings.TrimSpace(g.FirstName + " " + g.LastName),
			g.Email,
			g.Phone,
			b.CheckIn.Format(utils.DateLayout),
			b.CheckOut.Format(utils.DateLayout),
			utils.Nights(b.CheckIn, b.CheckOut),
			b.Guests,
			b.TotalPrice,
			string(b.Status),
			txID,
			b.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, Internal(err)
		}
		if err := x.SetSheetRow(bookingSheet, cell, &row); err != nil {
			return nil, Internal(fmt.Errorf("row %d: %w", i+2, err))
		}
	}

	if err := x.SetPanes(bookingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, Internal(err)
	}

	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		return nil, Internal(fmt.Errorf("write workbook: %w", err))
	}
	return buf.Bytes(), nil
}

// StatusCount is one row of the dashboard summary.
type StatusCount struct {
	Confirmed int64 `json:"confirmed"`
	Pending   int64 `json:"pending"`
	Cancelled int64 `json:"cancelled"`
}

// BookingSummary counts live bookings by status, created since the given time.
func (s *ExportService) BookingSummary(ctx context.Context, since time.Time) (StatusCount, error) {
	return s.statusCounts(ctx, since, time.Time{})
}

// statusCounts counts live bookings created in [from, to]. A zero to leaves
// the range open.
func (s *ExportService) statusCounts(ctx context.Context, from, to time.Time) (StatusCount, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	q := s.Bookings.DB.WithContext(ctx).Model(&models.Booking{}).
		Select("status, COUNT(*) AS n").
		Where("created_at >= ?", from)
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	if err := q.Group("status").Scan(&rows).Error; err != nil {
		return StatusCount{}, Internal(err)
	}
	var out StatusCount
	for _, r := range rows {
		switch models.BookingStatus(r.Status) {
		case models.StatusConfirmed:
			out.Confirmed = r.N
		case models.StatusPending:
			out.Pending = r.N
		case models.StatusCancelled:
			out.Cancelled = r.N
		}
	}
	return out, nil
}

// PeriodCount is the status breakdown for one dashboard bucket.
type PeriodCount struct {
	Label string    `json:"label"`
	From  time.Time `json:"from"`
	StatusCount
}

// BookingDashboard buckets bookings by creation date: the current day, ISO
// week (Monday first), month and year, plus all time.
type BookingDashboard struct {
	Today PeriodCount `json:"today"`
	Week  PeriodCount `json:"week"`
	Month PeriodCount `json:"month"`
	Year  PeriodCount `json:"year"`
	All   PeriodCount `json:"all"`
}

const dashboardDay = "Monday, January 02, 2006"

func (s *ExportService) Dashboard(ctx context.Context, now time.Time) (BookingDashboard, error) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	year := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	var out BookingDashboard
	buckets := []struct {
		dst   *PeriodCount
		label string
		from  time.Time
	}{
		{&out.Today, day.Format(dashboardDay), day},
		{&out.Week, week.Format(dashboardDay) + " - " + week.AddDate(0, 0, 6).Format(dashboardDay), week},
		{&out.Month, now.Month().String(), month},
		{&out.Year, fmt.Sprint(now.Year()), year},
		{&out.All, "All Bookings", time.Time{}},
	}
	for _, b := range buckets {
		counts, err := s.statusCounts(ctx, b.from, now)
		if err != nil {
			return BookingDashboard{}, err
		}
		*b.dst = PeriodCount{Label: b.label, From: b.from, StatusCount: counts}
	}
	return out, nil
}
