package controllers

import (
	"net/http"

	"myhotel/middleware"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// availabilityPayload accepts strings or bare numbers so each field is
// validated on its own.
type availabilityPayload struct {
	RoomType utils.FlexString `json:"room_type" form:"room_type"`
	CheckIn  utils.FlexString `json:"checkin" form:"checkin"`
	CheckOut utils.FlexString `json:"checkout" form:"checkout"`
	Room     utils.FlexString `json:"room" form:"room"`
	Guest    utils.FlexString `json:"guest" form:"guest"`
}

type AvailabilityController struct {
	Svc *services.AvailabilityService
	Log *zap.Logger
}

func NewAvailabilityController(svc *services.AvailabilityService, log *zap.Logger) *AvailabilityController {
	return &AvailabilityController{Svc: svc, Log: log}
}

// Check answers the public availability form. GET reads the query string,
// POST a JSON body.
func (ac *AvailabilityController) Check(c *gin.Context) {
	var p availabilityPayload
	if c.Request.Method == http.MethodGet {
		p = availabilityPayload{
			RoomType: utils.FlexString(c.Query("room_type")),
			CheckIn:  utils.FlexString(c.Query("checkin")),
			CheckOut: utils.FlexString(c.Query("checkout")),
			Room:     utils.FlexString(c.Query("room")),
			Guest:    utils.FlexString(c.Query("guest")),
		}
	} else if err := bindJSON(c, &p); err != nil {
		middleware.WriteError(c, ac.Log, err, nil)
		return
	}

	res, err := ac.Svc.Check(c.Request.Context(), services.AvailabilityRequest{
		CategoryID: p.RoomType.String(),
		CheckIn:    p.CheckIn.String(),
		CheckOut:   p.CheckOut.String(),
		Rooms:      p.Room.String(),
		Guests:     p.Guest.String(),
	})
	if err != nil {
		middleware.WriteError(c, ac.Log, err, nil)
		return
	}
	if res.Status == services.AvailabilityInvalid {
		utils.JSONFailure(c, http.StatusBadRequest, "invalid_request", res.Errors, res.FormData)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, res)
}
