package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"myhotel/middleware"
	"myhotel/models"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type bookingPayload struct {
	PaymentReference string               `json:"payment_reference,omitempty"`
	RoomID           uint                 `json:"room_id,omitempty"`
	RoomTypeID       uint                 `json:"room_type_id,omitempty"`
	Rooms            int                  `json:"rooms,omitempty"`
	CheckIn          string               `json:"check_in"`
	CheckOut         string               `json:"check_out"`
	Guests           int                  `json:"guests"`
	Guest            services.GuestInfo   `json:"guest"`
	SpecialRequest   string               `json:"special_request,omitempty"`
	Status           models.BookingStatus `json:"status,omitempty"`
}

func (p bookingPayload) request() services.CreateBookingRequest {
	return services.CreateBookingRequest{
		RoomID:         p.RoomID,
		RoomTypeID:     p.RoomTypeID,
		Rooms:          p.Rooms,
		CheckIn:        p.CheckIn,
		CheckOut:       p.CheckOut,
		Guests:         p.Guests,
		Guest:          p.Guest,
		SpecialRequest: p.SpecialRequest,
		Status:         p.Status,
	}
}

type editBookingPayload struct {
	RoomID         uint    `json:"room_id,omitempty"`
	CheckIn        string  `json:"check_in,omitempty"`
	CheckOut       string  `json:"check_out,omitempty"`
	Guests         int     `json:"guests,omitempty"`
	SpecialRequest *string `json:"special_request,omitempty"`
}

type BookingController struct {
	Bookings *services.BookingService
	Payments *services.PaymentService
	Export   *services.ExportService
	Log      *zap.Logger
}

func NewBookingController(bookings *services.BookingService, payments *services.PaymentService, export *services.ExportService, log *zap.Logger) *BookingController {
	return &BookingController{Bookings: bookings, Payments: payments, Export: export, Log: log}
}

// Submit is the public booking endpoint. It only books against a verified
// payment reference.
func (bc *BookingController) Submit(c *gin.Context) {
	var p bookingPayload
	if err := bindJSON(c, &p); err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	if strings.TrimSpace(p.PaymentReference) == "" {
		middleware.WriteError(c, bc.Log, services.PaymentFailed("payment_required", "Payment verification is required."), p)
		return
	}
	bookings, err := bc.Payments.Checkout(c.Request.Context(), p.PaymentReference, p.request())
	if err != nil {
		middleware.WriteError(c, bc.Log, err, p)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, bookings)
}

// Create is the staff booking endpoint: no payment proof, status chosen by
// the caller.
func (bc *BookingController) Create(c *gin.Context) {
	var p bookingPayload
	if err := bindJSON(c, &p); err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	bookings, err := bc.Bookings.Create(c.Request.Context(), p.request())
	if err != nil {
		middleware.WriteError(c, bc.Log, err, p)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, bookings)
}

func (bc *BookingController) listFilter(c *gin.Context) (services.ListBookingsFilter, error) {
	var f services.ListBookingsFilter
	var err error
	if f.Mode, err = queryMode(c); err != nil {
		return f, err
	}
	if raw := c.Query("status"); raw != "" {
		f.Status = models.BookingStatus(raw)
		if !f.Status.Valid() {
			return f, services.Validation("invalid_query", fmt.Sprintf("Unknown booking status %q.", raw))
		}
	}
	if f.RoomID, err = queryUint(c, "room_id"); err != nil {
		return f, err
	}
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit", 50); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(c, "offset", 0); err != nil {
		return f, err
	}
	f.Search = c.Query("q")
	return f, nil
}

func (bc *BookingController) List(c *gin.Context) {
	f, err := bc.listFilter(c)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	items, total, err := bc.Bookings.List(c.Request.Context(), f)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"items": items, "total": total})
}

func (bc *BookingController) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	mode, err := queryMode(c)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	b, err := bc.Bookings.Get(c.Request.Context(), id, mode)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (bc *BookingController) Edit(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	var p editBookingPayload
	if err := bindJSON(c, &p); err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	b, err := bc.Bookings.Edit(c.Request.Context(), id, services.EditBookingRequest{
		RoomID:         p.RoomID,
		CheckIn:        p.CheckIn,
		CheckOut:       p.CheckOut,
		Guests:         p.Guests,
		SpecialRequest: p.SpecialRequest,
	})
	if err != nil {
		middleware.WriteError(c, bc.Log, err, p)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (bc *BookingController) Confirm(c *gin.Context) {
	bc.changeStatus(c, bc.Bookings.Confirm)
}

func (bc *BookingController) Cancel(c *gin.Context) {
	bc.changeStatus(c, bc.Bookings.Cancel)
}

func (bc *BookingController) changeStatus(c *gin.Context, apply func(ctx context.Context, id uint) (models.Booking, error)) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	b, err := apply(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (bc *BookingController) Delete(c *gin.Context) {
	softDelete(c, bc.Log, bc.Bookings.Delete)
}

func (bc *BookingController) Restore(c *gin.Context) {
	restore(c, bc.Log, bc.Bookings.Restore)
}

func (bc *BookingController) Purge(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	if err := bc.Bookings.Purge(c.Request.Context(), id); err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// RoomAvailability backs the edit form: is room_id free between check_in
// and check_out, ignoring booking exclude?
func (bc *BookingController) RoomAvailability(c *gin.Context) {
	roomID, err := queryUint(c, "room_id")
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	if roomID == 0 {
		middleware.WriteError(c, bc.Log, services.Validation("missing_room", "room_id is required."), nil)
		return
	}
	exclude, err := queryUint(c, "exclude")
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	ok, err := bc.Bookings.RoomAvailable(c.Request.Context(), roomID, c.Query("check_in"), c.Query("check_out"), exclude)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"room_id": roomID, "available": ok})
}

func (bc *BookingController) ExportXLSX(c *gin.Context) {
	f, err := bc.listFilter(c)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	data, err := bc.Export.BookingsXLSX(c.Request.Context(), f)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	name := fmt.Sprintf("bookings-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Summary counts bookings created in the last ?days (default 30) by status,
// alongside the day, week, month, year and all-time dashboard buckets.
func (bc *BookingController) Summary(c *gin.Context) {
	days, err := queryInt(c, "days", 30)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)
	counts, err := bc.Export.BookingSummary(c.Request.Context(), since)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	periods, err := bc.Export.Dashboard(c.Request.Context(), now)
	if err != nil {
		middleware.WriteError(c, bc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"since": since, "counts": counts, "periods": periods})
}
