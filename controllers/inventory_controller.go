package controllers

import (
	"context"
	"net/http"

	"myhotel/middleware"
	"myhotel/models"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type roomTypeAmenitiesPayload struct {
	AmenityIDs []uint `json:"amenity_ids"`
}

type roomAvailabilityPayload struct {
	IsAvailable *bool `json:"is_available"`
}

// InventoryController serves hotels, amenities, room types and rooms.
type InventoryController struct {
	Inventory *services.InventoryService
	Log       *zap.Logger
}

func NewInventoryController(inventory *services.InventoryService, log *zap.Logger) *InventoryController {
	return &InventoryController{Inventory: inventory, Log: log}
}

func (ic *InventoryController) fail(c *gin.Context, err error, formData interface{}) {
	middleware.WriteError(c, ic.Log, err, formData)
}

func (ic *InventoryController) restorer(model interface{}) func(ctx context.Context, id uint) error {
	return func(ctx context.Context, id uint) error {
		return ic.Inventory.RestoreRecord(ctx, model, id)
	}
}

// Hotels

func (ic *InventoryController) ListHotels(c *gin.Context) {
	listRecords(c, ic.Log, ic.Inventory.ListHotels)
}

func (ic *InventoryController) GetHotel(c *gin.Context) {
	getRecord(c, ic.Log, ic.Inventory.GetHotel)
}

func (ic *InventoryController) CreateHotel(c *gin.Context) {
	createRecord(c, ic.Log, ic.Inventory.CreateHotel)
}

func (ic *InventoryController) UpdateHotel(c *gin.Context) {
	updateRecord(c, ic.Log, ic.Inventory.UpdateHotel)
}

func (ic *InventoryController) DeleteHotel(c *gin.Context) {
	softDelete(c, ic.Log, ic.Inventory.DeleteHotel)
}

func (ic *InventoryController) RestoreHotel(c *gin.Context) {
	restore(c, ic.Log, ic.restorer(&models.Hotel{}))
}

// Hotel amenities

func (ic *InventoryController) ListHotelAmenities(c *gin.Context) {
	listRecords(c, ic.Log, ic.Inventory.ListHotelAmenities)
}

func (ic *InventoryController) CreateHotelAmenity(c *gin.Context) {
	createRecord(c, ic.Log, ic.Inventory.CreateHotelAmenity)
}

func (ic *InventoryController) UpdateHotelAmenity(c *gin.Context) {
	updateRecord(c, ic.Log, ic.Inventory.UpdateHotelAmenity)
}

func (ic *InventoryController) DeleteHotelAmenity(c *gin.Context) {
	softDelete(c, ic.Log, ic.Inventory.DeleteHotelAmenity)
}

func (ic *InventoryController) RestoreHotelAmenity(c *gin.Context) {
	restore(c, ic.Log, ic.restorer(&models.HotelAmenity{}))
}

// Room amenities

func (ic *InventoryController) ListRoomAmenities(c *gin.Context) {
	listRecords(c, ic.Log, ic.Inventory.ListRoomAmenities)
}

func (ic *InventoryController) CreateRoomAmenity(c *gin.Context) {
	createRecord(c, ic.Log, ic.Inventory.CreateRoomAmenity)
}

func (ic *InventoryController) UpdateRoomAmenity(c *gin.Context) {
	updateRecord(c, ic.Log, ic.Inventory.UpdateRoomAmenity)
}

func (ic *InventoryController) DeleteRoomAmenity(c *gin.Context) {
	softDelete(c, ic.Log, ic.Inventory.DeleteRoomAmenity)
}

func (ic *InventoryController) RestoreRoomAmenity(c *gin.Context) {
	restore(c, ic.Log, ic.restorer(&models.RoomAmenity{}))
}

// Room types

func (ic *InventoryController) ListRoomTypes(c *gin.Context) {
	listRecords(c, ic.Log, ic.Inventory.ListRoomTypes)
}

// PublicRoomTypes lists live room types for the booking form.
func (ic *InventoryController) PublicRoomTypes(c *gin.Context) {
	types, err := ic.Inventory.ListRoomTypes(c.Request.Context(), services.QueryDefault)
	if err != nil {
		ic.fail(c, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

func (ic *InventoryController) GetRoomType(c *gin.Context) {
	getRecord(c, ic.Log, ic.Inventory.GetRoomType)
}

func (ic *InventoryController) CreateRoomType(c *gin.Context) {
	createRecord(c, ic.Log, ic.Inventory.CreateRoomType)
}

func (ic *InventoryController) UpdateRoomType(c *gin.Context) {
	updateRecord(c, ic.Log, ic.Inventory.UpdateRoomType)
}

func (ic *InventoryController) SetRoomTypeAmenities(c *gin.Context) {
	updateRecord(c, ic.Log, func(ctx context.Context, id uint, in roomTypeAmenitiesPayload) (models.RoomType, error) {
		return ic.Inventory.SetRoomTypeAmenities(ctx, id, in.AmenityIDs)
	})
}

func (ic *InventoryController) DeleteRoomType(c *gin.Context) {
	softDelete(c, ic.Log, ic.Inventory.DeleteRoomType)
}

func (ic *InventoryController) RestoreRoomType(c *gin.Context) {
	restore(c, ic.Log, ic.restorer(&models.RoomType{}))
}

// Rooms

func (ic *InventoryController) ListRooms(c *gin.Context) {
	roomTypeID, err := queryUint(c, "room_type_id")
	if err != nil {
		ic.fail(c, err, nil)
		return
	}
	listRecords(c, ic.Log, func(ctx context.Context, mode services.QueryMode) ([]models.Room, error) {
		return ic.Inventory.ListRooms(ctx, mode, roomTypeID)
	})
}

func (ic *InventoryController) GetRoom(c *gin.Context) {
	getRecord(c, ic.Log, ic.Inventory.GetRoom)
}

func (ic *InventoryController) CreateRoom(c *gin.Context) {
	createRecord(c, ic.Log, ic.Inventory.CreateRoom)
}

func (ic *InventoryController) UpdateRoom(c *gin.Context) {
	updateRecord(c, ic.Log, ic.Inventory.UpdateRoom)
}

func (ic *InventoryController) SetRoomAvailability(c *gin.Context) {
	updateRecord(c, ic.Log, func(ctx context.Context, id uint, in roomAvailabilityPayload) (models.Room, error) {
		if in.IsAvailable == nil {
			return models.Room{}, services.Validation("invalid_payload", "is_available is required.")
		}
		return ic.Inventory.SetRoomAvailability(ctx, id, *in.IsAvailable)
	})
}

func (ic *InventoryController) DeleteRoom(c *gin.Context) {
	softDelete(c, ic.Log, ic.Inventory.DeleteRoom)
}

func (ic *InventoryController) RestoreRoom(c *gin.Context) {
	restore(c, ic.Log, ic.restorer(&models.Room{}))
}
