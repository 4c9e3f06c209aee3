package controllers

import (
	"net/http"

	"myhotel/middleware"
	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const paystackSignatureHeader = "X-Paystack-Signature"

type expectedAmountPayload struct {
	Reference string  `json:"reference"`
	Amount    float64 `json:"amount"`
}

type verifyPayload struct {
	Reference string `json:"reference"`
}

type PaymentController struct {
	Payments *services.PaymentService
	Log      *zap.Logger
}

func NewPaymentController(payments *services.PaymentService, log *zap.Logger) *PaymentController {
	return &PaymentController{Payments: payments, Log: log}
}

func (pc *PaymentController) StoreExpectedAmount(c *gin.Context) {
	var p expectedAmountPayload
	if err := bindJSON(c, &p); err != nil {
		middleware.WriteError(c, pc.Log, err, nil)
		return
	}
	if err := pc.Payments.StoreExpectedAmount(c.Request.Context(), p.Reference, p.Amount); err != nil {
		middleware.WriteError(c, pc.Log, err, p)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"reference": p.Reference, "amount": utils.RoundMoney(p.Amount)})
}

func (pc *PaymentController) Verify(c *gin.Context) {
	var p verifyPayload
	if err := bindJSON(c, &p); err != nil {
		middleware.WriteError(c, pc.Log, err, nil)
		return
	}
	proof, err := pc.Payments.Verify(c.Request.Context(), p.Reference)
	if err != nil {
		middleware.WriteError(c, pc.Log, err, p)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, proof)
}

// Webhook receives gateway events. The body is read raw so the signature
// covers exactly what was sent.
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		middleware.WriteError(c, pc.Log, services.Validation("invalid_payload", "Could not read request body."), nil)
		return
	}
	n, err := pc.Payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(paystackSignatureHeader))
	if err != nil {
		middleware.WriteError(c, pc.Log, err, nil)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"confirmed": n})
}
