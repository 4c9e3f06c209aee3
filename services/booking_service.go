package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"myhotel/models"
	"myhotel/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentProof is the verifier's answer for one payment reference, plus the
// amount recorded before the customer was sent to pay.
type PaymentProof struct {
	Reference      string          `json:"reference"`
	Status         string          `json:"status"`
	TransactionID  string          `json:"transaction_id"`
	PaidAmount     float64         `json:"paid_amount"`
	ExpectedAmount float64         `json:"expected_amount"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

type GuestInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// CreateBookingRequest selects either one concrete room (RoomID) or a number
// of rooms of a category (RoomTypeID + Rooms).
type CreateBookingRequest struct {
	RoomID         uint
	RoomTypeID     uint
	Rooms          int
	CheckIn        string
	CheckOut       string
	Guests         int
	Guest          GuestInfo
	SpecialRequest string

	// RequirePayment is set on the public flow. Staff bookings may skip the
	// proof and choose the initial status.
	RequirePayment bool
	Payment        *PaymentProof
	Status         models.BookingStatus
}

// EditBookingRequest leaves a field unchanged when it is zero.
type EditBookingRequest struct {
	RoomID         uint
	CheckIn        string
	CheckOut       string
	Guests         int
	SpecialRequest *string
}

type ListBookingsFilter struct {
	Mode   QueryMode
	Status models.BookingStatus
	RoomID uint
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
	Offset int
}

type BookingService struct {
	DB     *gorm.DB
	Ledger *Ledger
	Now    func() time.Time
	Log    *zap.Logger
}

func NewBookingService(db *gorm.DB, ledger *Ledger, log *zap.Logger) *BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	if ledger == nil {
		ledger = NewLedger(db)
	}
	return &BookingService{DB: db, Ledger: ledger, Now: time.Now, Log: log}
}

func newReferenceCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// spreadGuests splits guests over rooms as evenly as possible.
func spreadGuests(guests, rooms int) []int {
	out := make([]int, rooms)
	for i := range out {
		out[i] = guests / rooms
		if i < guests%rooms {
			out[i]++
		}
	}
	return out
}

func (s *BookingService) parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	if strings.TrimSpace(checkIn) == "" || strings.TrimSpace(checkOut) == "" {
		return time.Time{}, time.Time{}, Validation("missing_dates", "Please provide both check-in and check-out dates.")
	}
	in, errIn := utils.ParseDate(checkIn)
	out, errOut := utils.ParseDate(checkOut)
	if errIn != nil || errOut != nil {
		return time.Time{}, time.Time{}, Validation("invalid_date", "Invalid date format.")
	}
	if utils.Nights(in, out) < 1 {
		return time.Time{}, time.Time{}, Validation("invalid_date_range", "Check-in must be before check-out.")
	}
	return in, out, nil
}

func checkCapacity(roomType models.RoomType, guests, rooms int) error {
	if guests < 1 {
		return Validation("invalid_guests", "At least one guest is required.")
	}
	if rooms > 1 && guests < rooms {
		return Validation("invalid_guests", fmt.Sprintf("%d guest(s) cannot occupy %d rooms.", guests, rooms))
	}
	perRoom := (guests + rooms - 1) / rooms
	if perRoom > int(roomType.Capacity) {
		return Invariant("capacity_exceeded",
			fmt.Sprintf("Guest count exceeds room capacity by %d (capacity %d per room).", perRoom-int(roomType.Capacity), roomType.Capacity))
	}
	return nil
}

func checkPayment(proof *PaymentProof, total float64) error {
	if proof == nil {
		return PaymentFailed("payment_required", "Payment verification is required.")
	}
	if !strings.EqualFold(strings.TrimSpace(proof.Status), "success") {
		return PaymentFailed("payment_not_verified", "Payment has not been verified.")
	}
	if strings.TrimSpace(proof.TransactionID) == "" {
		return PaymentFailed("payment_missing_transaction", "Payment transaction id is missing.")
	}
	if proof.ExpectedAmount <= 0 {
		return PaymentFailed("payment_missing_expected", "No expected payment amount was recorded.")
	}
	if !utils.AmountsMatch(proof.PaidAmount, proof.ExpectedAmount) {
		return PaymentFailed("payment_mismatch",
			fmt.Sprintf("Paid amount %.2f does not match the expected amount %.2f.", proof.PaidAmount, proof.ExpectedAmount))
	}
	if !utils.AmountsMatch(proof.ExpectedAmount, total) {
		return PaymentFailed("payment_total_mismatch",
			fmt.Sprintf("Paid amount %.2f does not match the booking total %.2f.", proof.ExpectedAmount, total))
	}
	return nil
}

// validateStay is the save-time check every write runs inside its
// transaction: positive night count, guests within capacity and no
// overlapping active booking on the room other than b itself. It also
// derives the total price.
func validateStay(tx *gorm.DB, b *models.Booking, roomType models.RoomType) error {
	nights := utils.Nights(b.CheckIn, b.CheckOut)
	if nights < 1 {
		return Validation("invalid_date_range", "A booking must span at least one night.")
	}
	if err := checkCapacity(roomType, b.Guests, 1); err != nil {
		return err
	}
	busy, err := busyRooms(tx, []uint{b.RoomID}, b.CheckIn, b.CheckOut, b.ID)
	if err != nil {
		return Internal(err)
	}
	if busy[b.RoomID] {
		return Invariant("room_overlap", "The room is already booked for the selected dates.")
	}
	b.TotalPrice = utils.RoundMoney(roomType.BasePrice * float64(nights))
	return nil
}

func (s *BookingService) loadRoomType(db *gorm.DB, id uint) (models.RoomType, error) {
	var rt models.RoomType
	if err := db.First(&rt, id).Error; err != nil {
		if isNotFound(err) {
			return rt, Validation("unknown_room_type", "Selected room type does not exist.")
		}
		return rt, Internal(err)
	}
	return rt, nil
}

// Create writes one booking per requested room after verifying payment (on
// the public flow) and re-checking occupancy under row locks.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) ([]models.Booking, error) {
	in, out, err := s.parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if in.Before(utils.DateOnly(s.Now().UTC())) {
		return nil, Validation("checkin_in_past", "Check-in date cannot be in the past.")
	}
	guest := GuestInfo{
		FirstName: strings.TrimSpace(req.Guest.FirstName),
		LastName:  strings.TrimSpace(req.Guest.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Guest.Email)),
		Phone:     strings.TrimSpace(req.Guest.Phone),
	}
	var missing []string
	if guest.FirstName == "" {
		missing = append(missing, "First name is required.")
	}
	if guest.LastName == "" {
		missing = append(missing, "Last name is required.")
	}
	if guest.Email == "" && guest.Phone == "" {
		missing = append(missing, "An email address or phone number is required.")
	}
	if len(missing) > 0 {
		return nil, Validation("invalid_guest", missing...)
	}

	db := s.DB.WithContext(ctx)
	rooms := req.Rooms
	if rooms < 1 || req.RoomID != 0 {
		rooms = 1
	}
	roomTypeID := req.RoomTypeID
	if req.RoomID != 0 {
		var room models.Room
		if err := db.First(&room, req.RoomID).Error; err != nil {
			if isNotFound(err) {
				return nil, Validation("unknown_room", "Selected room does not exist.")
			}
			return nil, Internal(err)
		}
		if !room.IsAvailable {
			return nil, Invariant("room_unavailable", fmt.Sprintf("Room %s is not available for booking.", room.RoomNumber))
		}
		roomTypeID = room.RoomTypeID
	}
	if roomTypeID == 0 {
		return nil, Validation("missing_room", "Please select a room or a room type.")
	}
	roomType, err := s.loadRoomType(db, roomTypeID)
	if err != nil {
		return nil, err
	}
	if err := checkCapacity(roomType, req.Guests, rooms); err != nil {
		return nil, err
	}

	nights := utils.Nights(in, out)
	total := utils.RoundMoney(roomType.BasePrice * float64(nights) * float64(rooms))

	status := models.StatusConfirmed
	if req.RequirePayment {
		if err := checkPayment(req.Payment, total); err != nil {
			return nil, err
		}
	} else {
		status = req.Status
		if status == "" {
			status = models.StatusPending
		}
		if !status.Active() {
			return nil, Validation("invalid_status", "A new booking must be pending or confirmed.")
		}
	}

	var created []models.Booking
	err = db.Transaction(func(tx *gorm.DB) error {
		var candidates []models.Room
		q := forUpdate(tx)
		if req.RoomID != 0 {
			q = q.Where("id = ? AND is_available = ?", req.RoomID, true)
		} else {
			q = q.Where("room_type_id = ? AND is_available = ?", roomTypeID, true).Order("id ASC")
		}
		if err := q.Find(&candidates).Error; err != nil {
			return Internal(err)
		}
		ids := make([]uint, 0, len(candidates))
		for _, r := range candidates {
			ids = append(ids, r.ID)
		}
		busy, err := busyRooms(tx, ids, in, out, 0)
		if err != nil {
			return Internal(err)
		}
		var free []models.Room
		for _, r := range candidates {
			if !busy[r.ID] {
				free = append(free, r)
			}
		}
		if len(free) < rooms {
			if req.RoomID != 0 {
				return Invariant("room_overlap", "The room is already booked for the selected dates.")
			}
			return Invariant("insufficient_rooms",
				fmt.Sprintf("Only %d room(s) available for the selected dates, %d requested.", len(free), rooms))
		}

		var txID, payRef *string
		var payload datatypes.JSON
		if req.Payment != nil {
			if v := strings.TrimSpace(req.Payment.TransactionID); v != "" {
				txID = &v
			}
			if v := strings.TrimSpace(req.Payment.Reference); v != "" {
				payRef = &v
			}
			if len(req.Payment.Payload) > 0 {
				payload = datatypes.JSON(req.Payment.Payload)
			}
		}
		if req.RequirePayment && payRef != nil {
			var used int64
			if err := tx.Unscoped().Model(&models.Booking{}).Where("payment_reference = ?", *payRef).Count(&used).Error; err != nil {
				return Internal(err)
			}
			if used > 0 {
				return Conflict("payment_already_used", "This payment has already been used for a booking.")
			}
		}

		split := spreadGuests(req.Guests, rooms)
		for i := 0; i < rooms; i++ {
			b := models.Booking{
				ReferenceCode:    newReferenceCode(),
				RoomID:           free[i].ID,
				CheckIn:          in,
				CheckOut:         out,
				Guests:           split[i],
				PaidNights:       nights,
				Status:           status,
				SpecialRequest:   strings.TrimSpace(req.SpecialRequest),
				TransactionID:    txID,
				PaymentReference: payRef,
				PaymentPayload:   payload,
			}
			if err := validateStay(tx, &b, roomType); err != nil {
				return err
			}
			if err := tx.Create(&b).Error; err != nil {
				return storeErr(err)
			}
			created = append(created, b)
		}

		g := models.Guest{
			BookingID: &created[0].ID,
			FirstName: guest.FirstName,
			LastName:  guest.LastName,
			Email:     guest.Email,
			Phone:     guest.Phone,
		}
		if err := tx.Create(&g).Error; err != nil {
			return storeErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(created))
	for _, b := range created {
		ids = append(ids, b.ID)
	}
	var stored []models.Booking
	if err := db.Preload("Room.RoomType").Where("id IN ?", ids).Order("id ASC").Find(&stored).Error; err != nil {
		return nil, Internal(err)
	}
	s.Log.Info("booking created",
		zap.Uints("booking_ids", ids),
		zap.String("status", string(status)),
		zap.Float64("total", total),
	)
	return stored, nil
}

func (s *BookingService) lockBooking(tx *gorm.DB, id uint) (models.Booking, error) {
	var b models.Booking
	if err := forUpdate(tx).First(&b, id).Error; err != nil {
		if isNotFound(err) {
			return b, NotFound("booking_not_found", "Booking not found.")
		}
		return b, Internal(err)
	}
	return b, nil
}

// Edit moves a booking to another room and/or dates. The stay may shrink or
// shift but never exceed the nights originally paid for.
func (s *BookingService) Edit(ctx context.Context, id uint, req EditBookingRequest) (models.Booking, error) {
	var result models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.lockBooking(tx, id)
		if err != nil {
			return err
		}
		if b.Status == models.StatusCancelled {
			return Invariant("booking_cancelled", "A cancelled booking cannot be edited.")
		}

		in, out := b.CheckIn, b.CheckOut
		if req.CheckIn != "" || req.CheckOut != "" {
			rawIn, rawOut := req.CheckIn, req.CheckOut
			if rawIn == "" {
				rawIn = b.CheckIn.Format(utils.DateLayout)
			}
			if rawOut == "" {
				rawOut = b.CheckOut.Format(utils.DateLayout)
			}
			if in, out, err = s.parseStay(rawIn, rawOut); err != nil {
				return err
			}
		}

		paid := b.PaidNights
		if paid == 0 {
			paid = utils.Nights(b.CheckIn, b.CheckOut)
		}
		if nights := utils.Nights(in, out); nights > paid {
			return Invariant("duration_exceeds_paid",
				fmt.Sprintf("The new stay is %d night(s), %d more than the %d night(s) originally paid for.", nights, nights-paid, paid))
		}

		roomID := b.RoomID
		if req.RoomID != 0 {
			roomID = req.RoomID
		}
		var room models.Room
		if err := forUpdate(tx).First(&room, roomID).Error; err != nil {
			if isNotFound(err) {
				return Validation("unknown_room", "Selected room does not exist.")
			}
			return Internal(err)
		}
		if roomID != b.RoomID && !room.IsAvailable {
			return Invariant("room_unavailable", fmt.Sprintf("Room %s is not available for booking.", room.RoomNumber))
		}
		roomType, err := s.loadRoomType(tx, room.RoomTypeID)
		if err != nil {
			return err
		}

		b.RoomID = roomID
		b.CheckIn, b.CheckOut = in, out
		if req.Guests != 0 {
			b.Guests = req.Guests
		}
		if req.SpecialRequest != nil {
			b.SpecialRequest = strings.TrimSpace(*req.SpecialRequest)
		}
		if err := validateStay(tx, &b, roomType); err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"room_id":         b.RoomID,
			"check_in":        b.CheckIn,
			"check_out":       b.CheckOut,
			"guests":          b.Guests,
			"total_price":     b.TotalPrice,
			"special_request": b.SpecialRequest,
		}).Error; err != nil {
			return Internal(err)
		}
		return tx.Preload("Room.RoomType").First(&result, b.ID).Error
	})
	if err != nil {
		return models.Booking{}, storeErr(err)
	}
	return result, nil
}

func (s *BookingService) transition(ctx context.Context, id uint, next models.BookingStatus) (models.Booking, error) {
	var result models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.lockBooking(tx, id)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(next) {
			return Invariant("invalid_transition",
				fmt.Sprintf("Cannot change booking status from %s to %s.", b.Status, next))
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", id).Update("status", next).Error; err != nil {
			return Internal(err)
		}
		b.Status = next
		result = b
		return nil
	})
	if err != nil {
		return models.Booking{}, storeErr(err)
	}
	s.Log.Info("booking status changed", zap.Uint("booking_id", id), zap.String("status", string(next)))
	return result, nil
}

func (s *BookingService) Confirm(ctx context.Context, id uint) (models.Booking, error) {
	return s.transition(ctx, id, models.StatusConfirmed)
}

func (s *BookingService) Cancel(ctx context.Context, id uint) (models.Booking, error) {
	return s.transition(ctx, id, models.StatusCancelled)
}

// ConfirmByPaymentReference confirms the pending bookings paid under ref and
// reports how many changed.
func (s *BookingService) ConfirmByPaymentReference(ctx context.Context, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, Validation("missing_reference", "Payment reference is required.")
	}
	var ids []uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Model(&models.Booking{}).
			Where("payment_reference = ? AND status = ?", ref, models.StatusPending).
			Pluck("id", &ids).Error; err != nil {
			return Internal(err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Model(&models.Booking{}).
			Where("id IN ? AND status = ?", ids, models.StatusPending).
			Update("status", models.StatusConfirmed).Error; err != nil {
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		return 0, storeErr(err)
	}
	for _, id := range ids {
		s.Log.Info("booking status changed", zap.Uint("booking_id", id), zap.String("status", string(models.StatusConfirmed)))
	}
	return len(ids), nil
}

func (s *BookingService) Delete(ctx context.Context, id uint, actorID *uint) error {
	return s.Ledger.SoftDelete(ctx, &models.Booking{}, id, actorID)
}

// Restore brings a soft-deleted booking back if its room still exists and,
// for an active booking, is still free for the stay.
func (s *BookingService) Restore(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Booking
		if err := tx.Unscoped().First(&b, id).Error; err != nil {
			if isNotFound(err) {
				return NotFound("booking_not_found", "Booking not found.")
			}
			return Internal(err)
		}
		if b.IsDeleted {
			var room models.Room
			if err := forUpdate(tx).First(&room, b.RoomID).Error; err != nil {
				if isNotFound(err) {
					return Conflict("room_missing", "The booked room no longer exists. Restore the room first.")
				}
				return Internal(err)
			}
		}
		if b.IsDeleted && b.Status.Active() {
			busy, err := busyRooms(tx, []uint{b.RoomID}, b.CheckIn, b.CheckOut, b.ID)
			if err != nil {
				return Internal(err)
			}
			if busy[b.RoomID] {
				return Conflict("restore_overlap", "The room has been booked for these dates since this booking was deleted.")
			}
		}
		return s.Ledger.WithTx(tx).Restore(ctx, &models.Booking{}, id)
	})
}

// Purge removes the booking permanently, detaching its guests first.
func (s *BookingService) Purge(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Model(&models.Guest{}).Where("booking_id = ?", id).
			UpdateColumn("booking_id", nil).Error; err != nil {
			return Internal(err)
		}
		return s.Ledger.WithTx(tx).HardDelete(ctx, &models.Booking{}, id)
	})
}

func (s *BookingService) Get(ctx context.Context, id uint, mode QueryMode) (models.Booking, error) {
	var b models.Booking
	err := mode.Apply(s.DB.WithContext(ctx)).Preload("Room.RoomType").First(&b, id).Error
	if err != nil {
		if isNotFound(err) {
			return b, NotFound("booking_not_found", "Booking not found.")
		}
		return b, Internal(err)
	}
	return b, nil
}

func (s *BookingService) List(ctx context.Context, f ListBookingsFilter) ([]models.Booking, int64, error) {
	q := f.Mode.Apply(s.DB.WithContext(ctx)).Model(&models.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.From != nil {
		q = q.Where("check_out > ?", utils.DateOnly(*f.From))
	}
	if f.To != nil {
		q = q.Where("check_in < ?", utils.DateOnly(*f.To))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		q = q.Where("reference_code LIKE ?", "%"+term+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, Internal(err)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	var out []models.Booking
	if err := q.Preload("Room.RoomType").Order("check_in DESC, id DESC").Find(&out).Error; err != nil {
		return nil, 0, Internal(err)
	}
	return out, total, nil
}

// RoomAvailable reports whether roomID is free for the stay, ignoring
// excludeBookingID. Used by the edit form before submitting.
func (s *BookingService) RoomAvailable(ctx context.Context, roomID uint, checkIn, checkOut string, excludeBookingID uint) (bool, error) {
	in, out, err := s.parseStay(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	var room models.Room
	if err := s.DB.WithContext(ctx).First(&room, roomID).Error; err != nil {
		if isNotFound(err) {
			return false, NotFound("room_not_found", "Room not found.")
		}
		return false, Internal(err)
	}
	if !room.IsAvailable {
		return false, nil
	}
	busy, err := busyRooms(s.DB.WithContext(ctx), []uint{roomID}, in, out, excludeBookingID)
	if err != nil {
		return false, Internal(err)
	}
	return !busy[roomID], nil
}
