package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"myhotel/models"
	"myhotel/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityPartial     AvailabilityStatus = "partial"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
	AvailabilityInvalid     AvailabilityStatus = "invalid"
)

// AvailabilityRequest carries the raw form values so parse failures can be
// reported back alongside the submitted data.
type AvailabilityRequest struct {
	CategoryID string
	CheckIn    string
	CheckOut   string
	Rooms      string
	Guests     string
}

func (r AvailabilityRequest) formData() map[string]string {
	return map[string]string{
		"room_type": r.CategoryID,
		"checkin":   r.CheckIn,
		"checkout":  r.CheckOut,
		"room":      r.Rooms,
		"guest":     r.Guests,
	}
}

type AvailabilityResult struct {
	Status         AvailabilityStatus `json:"status"`
	Message        string             `json:"availability_message,omitempty"`
	NightlyPrice   float64            `json:"base_price,omitempty"`
	TotalCost      float64            `json:"total_cost,omitempty"`
	Nights         int                `json:"number_of_nights,omitempty"`
	AvailableRooms int                `json:"available_rooms"`
	RequestedRooms int                `json:"requested_rooms,omitempty"`
	Errors         []string           `json:"errors"`
	FormData       map[string]string  `json:"form_data"`
}

func (r AvailabilityResult) OK() bool {
	return r.Status == AvailabilityAvailable || r.Status == AvailabilityPartial
}

type AvailabilityService struct {
	DB  *gorm.DB
	Now func() time.Time
	Log *zap.Logger
}

func NewAvailabilityService(db *gorm.DB, log *zap.Logger) *AvailabilityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityService{DB: db, Now: time.Now, Log: log}
}

// stayQuery is a validated availability question.
type stayQuery struct {
	RoomType models.RoomType
	CheckIn  time.Time
	CheckOut time.Time
	Rooms    int
	Guests   int // 0 when not supplied
}

func (s *AvailabilityService) invalid(req AvailabilityRequest, msg string) AvailabilityResult {
	return AvailabilityResult{
		Status:   AvailabilityInvalid,
		Errors:   []string{msg},
		FormData: req.formData(),
	}
}

// parseRoomCount applies the permissive default: absent, empty or below one
// means a single room. Non-numeric text is still rejected.
func parseRoomCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 1, nil
	}
	return n, nil
}

func parseGuestCount(raw string) (int, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// validate runs the input checks in a fixed order and stops at the first
// failure. A non-empty message means the request is invalid.
func (s *AvailabilityService) validate(ctx context.Context, req AvailabilityRequest) (stayQuery, string, error) {
	var q stayQuery
	if strings.TrimSpace(req.CheckIn) == "" || strings.TrimSpace(req.CheckOut) == "" {
		return q, "Please provide both check-in and check-out dates.", nil
	}
	in, errIn := utils.ParseDate(req.CheckIn)
	out, errOut := utils.ParseDate(req.CheckOut)
	if errIn != nil || errOut != nil {
		return q, "Invalid date format.", nil
	}
	if !in.Before(out) {
		return q, "Check-in must be before check-out.", nil
	}
	if in.Before(utils.DateOnly(s.Now().UTC())) {
		return q, "Check-in date cannot be in the past.", nil
	}
	q.CheckIn, q.CheckOut = in, out

	rawCategory := strings.TrimSpace(req.CategoryID)
	if rawCategory == "" {
		return q, "Please select a room type.", nil
	}
	categoryID, err := strconv.ParseUint(rawCategory, 10, 64)
	if err != nil {
		return q, "Selected room type does not exist.", nil
	}
	if err := s.DB.WithContext(ctx).First(&q.RoomType, uint(categoryID)).Error; err != nil {
		if isNotFound(err) {
			return q, "Selected room type does not exist.", nil
		}
		return q, "", err
	}

	rooms, err := parseRoomCount(req.Rooms)
	if err != nil {
		return q, "Number of rooms must be a number.", nil
	}
	q.Rooms = rooms

	guests, supplied, err := parseGuestCount(req.Guests)
	if err != nil {
		return q, "Number of guests must be a number.", nil
	}
	if supplied {
		if guests < 1 {
			return q, "At least one guest is required.", nil
		}
		if limit := int(q.RoomType.Capacity) * rooms; guests > limit {
			return q, fmt.Sprintf("Guest count exceeds the capacity of %d for %d room(s).", limit, rooms), nil
		}
		q.Guests = guests
	}
	return q, "", nil
}

// freeRoomIDs lists bookable rooms of the type with no overlapping active
// booking.
func freeRoomIDs(db *gorm.DB, roomTypeID uint, in, out time.Time) ([]uint, error) {
	var candidates []uint
	if err := bookableRoomsQuery(db, roomTypeID).Pluck("id", &candidates).Error; err != nil {
		return nil, err
	}
	busy, err := busyRooms(db, candidates, in, out, 0)
	if err != nil {
		return nil, err
	}
	free := make([]uint, 0, len(candidates))
	for _, id := range candidates {
		if !busy[id] {
			free = append(free, id)
		}
	}
	return free, nil
}

// Check answers whether the requested number of rooms of a category is free
// for the stay. It never writes. Validation problems come back in the
// result; the error return is reserved for store failures.
func (s *AvailabilityService) Check(ctx context.Context, req AvailabilityRequest) (AvailabilityResult, error) {
	q, msg, err := s.validate(ctx, req)
	if err != nil {
		return AvailabilityResult{}, Internal(err)
	}
	if msg != "" {
		return s.invalid(req, msg), nil
	}

	free, err := freeRoomIDs(s.DB.WithContext(ctx), q.RoomType.ID, q.CheckIn, q.CheckOut)
	if err != nil {
		return AvailabilityResult{}, Internal(err)
	}

	res := AvailabilityResult{
		AvailableRooms: len(free),
		RequestedRooms: q.Rooms,
		Errors:         []string{},
		FormData:       req.formData(),
	}
	nights := utils.Nights(q.CheckIn, q.CheckOut)
	switch {
	case len(free) >= q.Rooms:
		res.Status = AvailabilityAvailable
		res.Message = "Room available"
		res.NightlyPrice = q.RoomType.BasePrice
		res.Nights = nights
		res.TotalCost = utils.RoundMoney(q.RoomType.BasePrice * float64(q.Rooms) * float64(nights))
	case len(free) > 0:
		res.Status = AvailabilityPartial
		res.Message = fmt.Sprintf("Only %d room(s) available for the selected dates.", len(free))
		res.NightlyPrice = q.RoomType.BasePrice
		res.Nights = nights
		res.TotalCost = utils.RoundMoney(q.RoomType.BasePrice * float64(len(free)) * float64(nights))
	default:
		res.Status = AvailabilityUnavailable
		res.Message = "No Room available"
	}
	return res, nil
}
