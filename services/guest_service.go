package services

import (
	"context"
	"strings"

	"myhotel/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GuestService struct {
	DB     *gorm.DB
	Ledger *Ledger
	Log    *zap.Logger
}

func NewGuestService(db *gorm.DB, ledger *Ledger, log *zap.Logger) *GuestService {
	if log == nil {
		log = zap.NewNop()
	}
	if ledger == nil {
		ledger = NewLedger(db)
	}
	return &GuestService{DB: db, Ledger: ledger, Log: log}
}

type GuestInput struct {
	BookingID *uint  `json:"booking_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (in GuestInput) normalize() GuestInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

func (in GuestInput) validate() error {
	var msgs []string
	if in.FirstName == "" {
		msgs = append(msgs, "First name is required.")
	}
	if in.LastName == "" {
		msgs = append(msgs, "Last name is required.")
	}
	if in.Email == "" && in.Phone == "" {
		msgs = append(msgs, "An email address or phone number is required.")
	}
	if in.Email != "" && !validEmail(in.Email) {
		msgs = append(msgs, "Invalid email format.")
	}
	if len(msgs) > 0 {
		return Validation("invalid_guest", msgs...)
	}
	return nil
}

// DuplicateGuest reports that a guest with the same email or phone exists.
// It is a warning, not a failure.
type DuplicateGuest struct {
	Field    string
	Existing models.Guest
}

// FindDuplicate checks email first, then phone, skipping excludeID.
func (s *GuestService) FindDuplicate(ctx context.Context, email, phone string, excludeID uint) (*DuplicateGuest, error) {
	db := s.DB.WithContext(ctx)
	try := func(field, value string) (*DuplicateGuest, error) {
		if value == "" {
			return nil, nil
		}
		q := db.Where(field+" = ?", value)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		var g models.Guest
		err := q.Order("id ASC").First(&g).Error
		if isNotFound(err) {
			return nil, nil
		}
		if err != nil {
			return nil, Internal(err)
		}
		return &DuplicateGuest{Field: field, Existing: g}, nil
	}
	if dup, err := try("email", strings.ToLower(strings.TrimSpace(email))); dup != nil || err != nil {
		return dup, err
	}
	return try("phone", strings.TrimSpace(phone))
}

// Create stores a new guest unless one with the same email or phone already
// exists, in which case the existing record comes back with the warning.
func (s *GuestService) Create(ctx context.Context, in GuestInput) (models.Guest, *DuplicateGuest, error) {
	in = in.normalize()
	if err := in.validate(); err != nil {
		return models.Guest{}, nil, err
	}
	dup, err := s.FindDuplicate(ctx, in.Email, in.Phone, 0)
	if err != nil {
		return models.Guest{}, nil, err
	}
	if dup != nil {
		s.Log.Info("duplicate guest detected", zap.String("field", dup.Field), zap.Uint("guest_id", dup.Existing.ID))
		return dup.Existing, dup, nil
	}
	if err := s.checkBooking(ctx, in.BookingID); err != nil {
		return models.Guest{}, nil, err
	}
	g := models.Guest{BookingID: in.BookingID, FirstName: in.FirstName, LastName: in.LastName, Email: in.Email, Phone: in.Phone}
	if err := s.DB.WithContext(ctx).Omit("Booking").Create(&g).Error; err != nil {
		return models.Guest{}, nil, Internal(err)
	}
	return g, nil, nil
}

func (s *GuestService) checkBooking(ctx context.Context, bookingID *uint) error {
	if bookingID == nil {
		return nil
	}
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", *bookingID).Count(&n).Error; err != nil {
		return Internal(err)
	}
	if n == 0 {
		return Validation("unknown_booking", "Selected booking does not exist.")
	}
	return nil
}

// Update saves the changes and reports, without blocking, another guest that
// shares the new email or phone.
func (s *GuestService) Update(ctx context.Context, id uint, in GuestInput) (models.Guest, *DuplicateGuest, error) {
	g, err := s.Get(ctx, id, QueryDefault)
	if err != nil {
		return g, nil, err
	}
	in = in.normalize()
	if err := in.validate(); err != nil {
		return g, nil, err
	}
	if err := s.checkBooking(ctx, in.BookingID); err != nil {
		return g, nil, err
	}
	err = s.DB.WithContext(ctx).Model(&models.Guest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"booking_id": in.BookingID,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"email":      in.Email,
		"phone":      in.Phone,
	}).Error
	if err != nil {
		return g, nil, Internal(err)
	}
	dup, err := s.FindDuplicate(ctx, in.Email, in.Phone, id)
	if err != nil {
		return g, nil, err
	}
	g, err = s.Get(ctx, id, QueryDefault)
	return g, dup, err
}

func (s *GuestService) Get(ctx context.Context, id uint, mode QueryMode) (models.Guest, error) {
	return getRow[models.Guest](s.DB.WithContext(ctx), id, mode, "guest_not_found", "Guest not found.", "Booking.Room")
}

func (s *GuestService) List(ctx context.Context, mode QueryMode, search string) ([]models.Guest, error) {
	db := s.DB.WithContext(ctx)
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + term + "%"
		db = db.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like, like)
	}
	return listRows[models.Guest](db, mode, "id DESC", "Booking.Room")
}

func (s *GuestService) ByBooking(ctx context.Context, bookingID uint) ([]models.Guest, error) {
	var out []models.Guest
	if err := s.DB.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, Internal(err)
	}
	return out, nil
}

func (s *GuestService) Delete(ctx context.Context, id uint, actorID *uint) error {
	return s.Ledger.SoftDelete(ctx, &models.Guest{}, id, actorID)
}

func (s *GuestService) Restore(ctx context.Context, id uint) error {
	return s.Ledger.Restore(ctx, &models.Guest{}, id)
}
