package controllers

import (
	"fmt"
	"net/http"

	"myhotel/middleware"
	"myhotel/models"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type GuestController struct {
	Guests *services.GuestService
	Log    *zap.Logger
}

func NewGuestController(guests *services.GuestService, log *zap.Logger) *GuestController {
	return &GuestController{Guests: guests, Log: log}
}

func guestLocation(id uint) string {
	return fmt.Sprintf("/api/admin/guests/%d", id)
}

// writeGuest renders a saved guest, or the existing one plus a duplicate
// warning when the email or phone is already on file.
func writeGuest(c *gin.Context, status int, g models.Guest, dup *services.DuplicateGuest) {
	if dup == nil {
		utils.JSONSuccess(c, status, g)
		return
	}
	location := guestLocation(dup.Existing.ID)
	c.Header("Location", location)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"duplicate": true,
		"field":     dup.Field,
		"location":  location,
		"message":   fmt.Sprintf("A guest with this %s already exists.", dup.Field),
		"data":      g,
	})
}

func (gc *GuestController) List(c *gin.Context) {
	mode, err := queryMode(c)
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	guests, err := gc.Guests.List(c.Request.Context(), mode, c.Query("q"))
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

func (gc *GuestController) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	mode, err := queryMode(c)
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	g, err := gc.Guests.Get(c.Request.Context(), id, mode)
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, g)
}

func (gc *GuestController) ByBooking(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	guests, err := gc.Guests.ByBooking(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, guests)
}

func (gc *GuestController) Create(c *gin.Context) {
	var in services.GuestInput
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	g, dup, err := gc.Guests.Create(c.Request.Context(), in)
	if err != nil {
		middleware.WriteError(c, gc.Log, err, in)
		return
	}
	if dup == nil {
		c.Header("Location", guestLocation(g.ID))
	}
	writeGuest(c, http.StatusCreated, g, dup)
}

func (gc *GuestController) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	var in services.GuestInput
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, gc.Log, err, nil)
		return
	}
	g, dup, err := gc.Guests.Update(c.Request.Context(), id, in)
	if err != nil {
		middleware.WriteError(c, gc.Log, err, in)
		return
	}
	writeGuest(c, http.StatusOK, g, dup)
}

func (gc *GuestController) Delete(c *gin.Context) {
	softDelete(c, gc.Log, gc.Guests.Delete)
}

func (gc *GuestController) Restore(c *gin.Context) {
	restore(c, gc.Log, gc.Guests.Restore)
}
