package controllers

import (
	"net/http"

	"myhotel/middleware"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ContactController struct {
	Contacts *services.ContactService
	Log      *zap.Logger
}

func NewContactController(contacts *services.ContactService, log *zap.Logger) *ContactController {
	return &ContactController{Contacts: contacts, Log: log}
}

func (cc *ContactController) Submit(c *gin.Context) {
	var in services.ContactInput
	if err := bindJSON(c, &in); err != nil {
		middleware.WriteError(c, cc.Log, err, nil)
		return
	}
	msg, err := cc.Contacts.Submit(c.Request.Context(), in)
	if err != nil {
		middleware.WriteError(c, cc.Log, err, in)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, gin.H{"id": msg.ID, "message": "Thank you for contacting us."})
}

func (cc *ContactController) List(c *gin.Context) {
	mode, err := queryMode(c)
	if err != nil {
		middleware.WriteError(c, cc.Log, err, nil)
		return
	}
	msgs, err := cc.Contacts.List(c.Request.Context(), mode)
	if err != nil {
		middleware.WriteError(c, cc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, msgs)
}

func (cc *ContactController) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		middleware.WriteError(c, cc.Log, err, nil)
		return
	}
	msg, err := cc.Contacts.Get(c.Request.Context(), id)
	if err != nil {
		middleware.WriteError(c, cc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, msg)
}

func (cc *ContactController) Delete(c *gin.Context) {
	softDelete(c, cc.Log, cc.Contacts.Delete)
}

func (cc *ContactController) Restore(c *gin.Context) {
	restore(c, cc.Log, cc.Contacts.Restore)
}
