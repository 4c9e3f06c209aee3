package services

import (
	"context"
	"fmt"
	"strings"

	"myhotel/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InventoryService manages hotels, amenities, room types and rooms. Deletes
// go through the ledger after the relevant dependency guard.
type InventoryService struct {
	DB     *gorm.DB
	Ledger *Ledger
	Log    *zap.Logger
}

func NewInventoryService(db *gorm.DB, ledger *Ledger, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	if ledger == nil {
		ledger = NewLedger(db)
	}
	return &InventoryService{DB: db, Ledger: ledger, Log: log}
}

func listRows[T any](db *gorm.DB, mode QueryMode, order string, preloads ...string) ([]T, error) {
	q := mode.Apply(db)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var out []T
	if err := q.Order(order).Find(&out).Error; err != nil {
		return nil, Internal(err)
	}
	return out, nil
}

func getRow[T any](db *gorm.DB, id uint, mode QueryMode, code, msg string, preloads ...string) (T, error) {
	var row T
	q := mode.Apply(db)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&row, id).Error; err != nil {
		if isNotFound(err) {
			return row, NotFound(code, msg)
		}
		return row, Internal(err)
	}
	return row, nil
}

// ---------------- Hotels ----------------

type HotelInput struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Description  string `json:"description"`
	Logo         string `json:"logo"`
}

func (in HotelInput) apply(h *models.Hotel) error {
	h.Name = strings.TrimSpace(in.Name)
	h.Address = strings.TrimSpace(in.Address)
	h.ContactEmail = strings.TrimSpace(in.ContactEmail)
	h.ContactPhone = strings.TrimSpace(in.ContactPhone)
	h.Description = strings.TrimSpace(in.Description)
	h.Logo = strings.TrimSpace(in.Logo)
	if h.Name == "" {
		return Validation("invalid_hotel", "Hotel name is required.")
	}
	return nil
}

func (s *InventoryService) ListHotels(ctx context.Context, mode QueryMode) ([]models.Hotel, error) {
	return listRows[models.Hotel](s.DB.WithContext(ctx), mode, "id ASC")
}

func (s *InventoryService) GetHotel(ctx context.Context, id uint) (models.Hotel, error) {
	return getRow[models.Hotel](s.DB.WithContext(ctx), id, QueryDefault, "hotel_not_found", "Hotel not found.")
}

func (s *InventoryService) CreateHotel(ctx context.Context, in HotelInput) (models.Hotel, error) {
	var h models.Hotel
	if err := in.apply(&h); err != nil {
		return h, err
	}
	if err := s.DB.WithContext(ctx).Create(&h).Error; err != nil {
		return h, Internal(err)
	}
	return h, nil
}

func (s *InventoryService) UpdateHotel(ctx context.Context, id uint, in HotelInput) (models.Hotel, error) {
	h, err := s.GetHotel(ctx, id)
	if err != nil {
		return h, err
	}
	if err := in.apply(&h); err != nil {
		return h, err
	}
	if err := s.DB.WithContext(ctx).Save(&h).Error; err != nil {
		return h, Internal(err)
	}
	return h, nil
}

func (s *InventoryService) DeleteHotel(ctx context.Context, id uint, actorID *uint) error {
	return s.guardedDelete(ctx, &models.Hotel{}, id, actorID, func(tx *gorm.DB) error {
		var rooms int64
		if err := tx.Model(&models.Room{}).Where("hotel_id = ?", id).Count(&rooms).Error; err != nil {
			return Internal(err)
		}
		if rooms > 0 {
			return Conflict("hotel_in_use", fmt.Sprintf("%d room(s) still belong to this hotel.", rooms))
		}
		return nil
	})
}

// ---------------- Amenities ----------------

type AmenityInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconName    string `json:"icon_name"`
}

func (in AmenityInput) validate() (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", Validation("invalid_amenity", "Amenity name is required.")
	}
	return name, nil
}

func (s *InventoryService) ListHotelAmenities(ctx context.Context, mode QueryMode) ([]models.HotelAmenity, error) {
	return listRows[models.HotelAmenity](s.DB.WithContext(ctx), mode, "name ASC")
}

func (s *InventoryService) CreateHotelAmenity(ctx context.Context, in AmenityInput) (models.HotelAmenity, error) {
	name, err := in.validate()
	if err != nil {
		return models.HotelAmenity{}, err
	}
	a := models.HotelAmenity{Name: name, Description: strings.TrimSpace(in.Description), IconName: strings.TrimSpace(in.IconName)}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return a, Internal(err)
	}
	return a, nil
}

func (s *InventoryService) UpdateHotelAmenity(ctx context.Context, id uint, in AmenityInput) (models.HotelAmenity, error) {
	a, err := getRow[models.HotelAmenity](s.DB.WithContext(ctx), id, QueryDefault, "amenity_not_found", "Amenity not found.")
	if err != nil {
		return a, err
	}
	name, err := in.validate()
	if err != nil {
		return a, err
	}
	a.Name, a.Description, a.IconName = name, strings.TrimSpace(in.Description), strings.TrimSpace(in.IconName)
	if err := s.DB.WithContext(ctx).Save(&a).Error; err != nil {
		return a, Internal(err)
	}
	return a, nil
}

func (s *InventoryService) DeleteHotelAmenity(ctx context.Context, id uint, actorID *uint) error {
	return s.Ledger.SoftDelete(ctx, &models.HotelAmenity{}, id, actorID)
}

func (s *InventoryService) ListRoomAmenities(ctx context.Context, mode QueryMode) ([]models.RoomAmenity, error) {
	return listRows[models.RoomAmenity](s.DB.WithContext(ctx), mode, "name ASC")
}

func (s *InventoryService) CreateRoomAmenity(ctx context.Context, in AmenityInput) (models.RoomAmenity, error) {
	name, err := in.validate()
	if err != nil {
		return models.RoomAmenity{}, err
	}
	a := models.RoomAmenity{Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.DB.WithContext(ctx).Create(&a).Error; err != nil {
		return a, Internal(err)
	}
	return a, nil
}

func (s *InventoryService) UpdateRoomAmenity(ctx context.Context, id uint, in AmenityInput) (models.RoomAmenity, error) {
	a, err := getRow[models.RoomAmenity](s.DB.WithContext(ctx), id, QueryDefault, "amenity_not_found", "Amenity not found.")
	if err != nil {
		return a, err
	}
	name, err := in.validate()
	if err != nil {
		return a, err
	}
	a.Name, a.Description = name, strings.TrimSpace(in.Description)
	if err := s.DB.WithContext(ctx).Save(&a).Error; err != nil {
		return a, Internal(err)
	}
	return a, nil
}

// DeleteRoomAmenity is blocked while a live room type lists the amenity.
func (s *InventoryService) DeleteRoomAmenity(ctx context.Context, id uint, actorID *uint) error {
	return s.guardedDelete(ctx, &models.RoomAmenity{}, id, actorID, func(tx *gorm.DB) error {
		var n int64
		err := tx.Table("room_type_amenities").
			Joins("JOIN room_types ON room_types.id = room_type_amenities.room_type_id").
			Where("room_type_amenities.room_amenity_id = ? AND room_types.is_deleted = ?", id, false).
			Count(&n).Error
		if err != nil {
			return Internal(err)
		}
		if n > 0 {
			return Conflict("amenity_in_use", fmt.Sprintf("%d room type(s) still list this amenity.", n))
		}
		return nil
	})
}

// ---------------- Room types ----------------

type RoomTypeInput struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	BasePrice    float64 `json:"base_price"`
	DisplayPrice string  `json:"display_price"`
	Capacity     int     `json:"capacity"`
	// AmenityIDs nil keeps the current set on update.
	AmenityIDs []uint `json:"amenity_ids"`
}

func (in RoomTypeInput) apply(rt *models.RoomType) error {
	var msgs []string
	rt.Name = strings.TrimSpace(in.Name)
	rt.Description = strings.TrimSpace(in.Description)
	rt.DisplayPrice = strings.TrimSpace(in.DisplayPrice)
	if rt.Name == "" {
		msgs = append(msgs, "Room type name is required.")
	}
	if in.BasePrice <= 0 {
		msgs = append(msgs, "Base price must be greater than zero.")
	}
	if in.Capacity < 1 {
		msgs = append(msgs, "Capacity must be at least 1.")
	}
	if len(msgs) > 0 {
		return Validation("invalid_room_type", msgs...)
	}
	rt.BasePrice = in.BasePrice
	rt.Capacity = uint(in.Capacity)
	return nil
}

func (s *InventoryService) loadAmenities(db *gorm.DB, ids []uint) ([]models.RoomAmenity, error) {
	if len(ids) == 0 {
		return []models.RoomAmenity{}, nil
	}
	var out []models.RoomAmenity
	if err := db.Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, Internal(err)
	}
	seen := map[uint]bool{}
	for _, a := range out {
		seen[a.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return nil, Validation("unknown_amenity", fmt.Sprintf("Amenity %d does not exist.", id))
		}
	}
	return out, nil
}

func (s *InventoryService) ListRoomTypes(ctx context.Context, mode QueryMode) ([]models.RoomType, error) {
	return listRows[models.RoomType](s.DB.WithContext(ctx), mode, "name ASC", "Amenities")
}

func (s *InventoryService) GetRoomType(ctx context.Context, id uint) (models.RoomType, error) {
	return getRow[models.RoomType](s.DB.WithContext(ctx), id, QueryDefault, "room_type_not_found", "Room type not found.", "Amenities")
}

// CreateRoomType allows an empty amenity set so setup can happen in two
// steps. Every later write requires at least one amenity.
func (s *InventoryService) CreateRoomType(ctx context.Context, in RoomTypeInput) (models.RoomType, error) {
	var rt models.RoomType
	if err := in.apply(&rt); err != nil {
		return rt, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		amenities, err := s.loadAmenities(tx, in.AmenityIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit("Amenities").Create(&rt).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("room_type_exists", fmt.Sprintf("A room type named %q already exists.", rt.Name))
			}
			return Internal(err)
		}
		if len(amenities) > 0 {
			if err := tx.Model(&rt).Association("Amenities").Replace(amenities); err != nil {
				return Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return models.RoomType{}, storeErr(err)
	}
	return s.GetRoomType(ctx, rt.ID)
}

func (s *InventoryService) UpdateRoomType(ctx context.Context, id uint, in RoomTypeInput) (models.RoomType, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rt, err := getRow[models.RoomType](tx, id, QueryDefault, "room_type_not_found", "Room type not found.", "Amenities")
		if err != nil {
			return err
		}
		oldCapacity := rt.Capacity
		if err := in.apply(&rt); err != nil {
			return err
		}
		if rt.Capacity < oldCapacity {
			var roomIDs []uint
			if err := forUpdate(tx).Model(&models.Room{}).Where("room_type_id = ?", id).Pluck("id", &roomIDs).Error; err != nil {
				return Internal(err)
			}
			n, err := oversizedBookings(tx, roomIDs, rt.Capacity)
			if err != nil {
				return Internal(err)
			}
			if n > 0 {
				return capacityConflict(n, rt.Capacity)
			}
		}
		amenities := rt.Amenities
		if in.AmenityIDs != nil {
			if amenities, err = s.loadAmenities(tx, in.AmenityIDs); err != nil {
				return err
			}
		}
		if len(amenities) == 0 {
			return Invariant("amenities_required", "A room type must have at least one amenity.")
		}
		if err := tx.Model(&models.RoomType{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":          rt.Name,
			"description":   rt.Description,
			"base_price":    rt.BasePrice,
			"display_price": rt.DisplayPrice,
			"capacity":      rt.Capacity,
		}).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("room_type_exists", fmt.Sprintf("A room type named %q already exists.", rt.Name))
			}
			return Internal(err)
		}
		if in.AmenityIDs != nil {
			if err := tx.Model(&rt).Association("Amenities").Replace(amenities); err != nil {
				return Internal(err)
			}
		}
		return nil
	})
	if err != nil {
		return models.RoomType{}, storeErr(err)
	}
	return s.GetRoomType(ctx, id)
}

func (s *InventoryService) SetRoomTypeAmenities(ctx context.Context, id uint, amenityIDs []uint) (models.RoomType, error) {
	if len(amenityIDs) == 0 {
		return models.RoomType{}, Invariant("amenities_required", "A room type must have at least one amenity.")
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rt, err := getRow[models.RoomType](tx, id, QueryDefault, "room_type_not_found", "Room type not found.")
		if err != nil {
			return err
		}
		amenities, err := s.loadAmenities(tx, amenityIDs)
		if err != nil {
			return err
		}
		if err := tx.Model(&rt).Association("Amenities").Replace(amenities); err != nil {
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		return models.RoomType{}, storeErr(err)
	}
	return s.GetRoomType(ctx, id)
}

// DeleteRoomType is blocked while any live room uses the type.
func (s *InventoryService) DeleteRoomType(ctx context.Context, id uint, actorID *uint) error {
	return s.guardedDelete(ctx, &models.RoomType{}, id, actorID, func(tx *gorm.DB) error {
		var rooms int64
		if err := tx.Model(&models.Room{}).Where("room_type_id = ?", id).Count(&rooms).Error; err != nil {
			return Internal(err)
		}
		if rooms > 0 {
			return Conflict("room_type_in_use", fmt.Sprintf("%d room(s) are still assigned to this room type.", rooms))
		}
		return nil
	})
}

// ---------------- Rooms ----------------

type RoomInput struct {
	RoomNumber  string `json:"room_number"`
	RoomTypeID  uint   `json:"room_type_id"`
	HotelID     *uint  `json:"hotel_id"`
	IsAvailable *bool  `json:"is_available"`
}

func (s *InventoryService) checkRoomRefs(db *gorm.DB, in RoomInput) error {
	if _, err := getRow[models.RoomType](db, in.RoomTypeID, QueryDefault, "", ""); err != nil {
		if KindOf(err) == KindNotFound {
			return Validation("unknown_room_type", "Selected room type does not exist.")
		}
		return err
	}
	if in.HotelID != nil {
		if _, err := getRow[models.Hotel](db, *in.HotelID, QueryDefault, "", ""); err != nil {
			if KindOf(err) == KindNotFound {
				return Validation("unknown_hotel", "Selected hotel does not exist.")
			}
			return err
		}
	}
	return nil
}

func (s *InventoryService) ListRooms(ctx context.Context, mode QueryMode, roomTypeID uint) ([]models.Room, error) {
	db := s.DB.WithContext(ctx)
	if roomTypeID != 0 {
		db = db.Where("room_type_id = ?", roomTypeID)
	}
	return listRows[models.Room](db, mode, "room_number ASC", "RoomType")
}

func (s *InventoryService) GetRoom(ctx context.Context, id uint) (models.Room, error) {
	return getRow[models.Room](s.DB.WithContext(ctx), id, QueryDefault, "room_not_found", "Room not found.", "RoomType")
}

func (s *InventoryService) CreateRoom(ctx context.Context, in RoomInput) (models.Room, error) {
	number := strings.TrimSpace(in.RoomNumber)
	if number == "" {
		return models.Room{}, Validation("invalid_room", "Room number is required.")
	}
	db := s.DB.WithContext(ctx)
	if err := s.checkRoomRefs(db, in); err != nil {
		return models.Room{}, err
	}
	room := models.Room{RoomNumber: number, RoomTypeID: in.RoomTypeID, HotelID: in.HotelID, IsAvailable: true}
	if in.IsAvailable != nil {
		room.IsAvailable = *in.IsAvailable
	}
	if err := db.Omit("RoomType").Create(&room).Error; err != nil {
		if isDuplicateKey(err) {
			return models.Room{}, Conflict("room_number_taken", fmt.Sprintf("Room number %q already exists.", number))
		}
		return models.Room{}, Internal(err)
	}
	return s.GetRoom(ctx, room.ID)
}

// UpdateRoom edits a room. Moving it to a smaller room type is refused while
// an active booking on it would exceed the new capacity. hotel_id is only
// written when supplied.
func (s *InventoryService) UpdateRoom(ctx context.Context, id uint, in RoomInput) (models.Room, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := forUpdate(tx).First(&room, id).Error; err != nil {
			if isNotFound(err) {
				return NotFound("room_not_found", "Room not found.")
			}
			return Internal(err)
		}
		if in.RoomTypeID == 0 {
			in.RoomTypeID = room.RoomTypeID
		}
		if err := s.checkRoomRefs(tx, in); err != nil {
			return err
		}
		if in.RoomTypeID != room.RoomTypeID {
			var rt models.RoomType
			if err := tx.First(&rt, in.RoomTypeID).Error; err != nil {
				return Internal(err)
			}
			n, err := oversizedBookings(tx, []uint{id}, rt.Capacity)
			if err != nil {
				return Internal(err)
			}
			if n > 0 {
				return capacityConflict(n, rt.Capacity)
			}
		}
		updates := map[string]interface{}{"room_type_id": in.RoomTypeID}
		if in.HotelID != nil {
			updates["hotel_id"] = *in.HotelID
		}
		if number := strings.TrimSpace(in.RoomNumber); number != "" {
			updates["room_number"] = number
		}
		if in.IsAvailable != nil {
			updates["is_available"] = *in.IsAvailable
		}
		if err := tx.Model(&models.Room{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return Conflict("room_number_taken", "That room number already exists.")
			}
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		return models.Room{}, storeErr(err)
	}
	return s.GetRoom(ctx, id)
}

// SetRoomAvailability flips the administrative override. Existing bookings
// are untouched.
func (s *InventoryService) SetRoomAvailability(ctx context.Context, id uint, available bool) (models.Room, error) {
	if _, err := s.GetRoom(ctx, id); err != nil {
		return models.Room{}, err
	}
	if err := s.DB.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Update("is_available", available).Error; err != nil {
		return models.Room{}, Internal(err)
	}
	return s.GetRoom(ctx, id)
}

// DeleteRoom is blocked while the room holds any live pending or confirmed
// booking.
func (s *InventoryService) DeleteRoom(ctx context.Context, id uint, actorID *uint) error {
	return s.guardedDelete(ctx, &models.Room{}, id, actorID, func(tx *gorm.DB) error {
		var active int64
		err := tx.Model(&models.Booking{}).
			Where("room_id = ? AND status IN ?", id, activeStatusValues()).
			Count(&active).Error
		if err != nil {
			return Internal(err)
		}
		if active > 0 {
			return Conflict("room_has_bookings", fmt.Sprintf("The room has %d active booking(s).", active))
		}
		return nil
	})
}

// ---------------- Shared ----------------

// guardedDelete runs guard and the soft delete in one transaction.
func (s *InventoryService) guardedDelete(ctx context.Context, model interface{}, id uint, actorID *uint, guard func(tx *gorm.DB) error) error {
	return storeErr(s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := guard(tx); err != nil {
			return err
		}
		if err := s.Ledger.WithTx(tx).SoftDelete(ctx, model, id, actorID); err != nil {
			return err
		}
		s.Log.Info("record soft-deleted", zap.String("table", fmt.Sprintf("%T", model)), zap.Uint("id", id))
		return nil
	}))
}

// RestoreRecord clears the ledger fields on any inventory entity.
func (s *InventoryService) RestoreRecord(ctx context.Context, model interface{}, id uint) error {
	return s.Ledger.Restore(ctx, model, id)
}
