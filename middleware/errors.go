package middleware

import (
	"net/http"

	"myhotel/services"
	"myhotel/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindPayment:
		return http.StatusPaymentRequired
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindInvariant:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// WriteError renders err as the failure payload and aborts the chain.
// Internal errors are logged with the request path; the client only sees
// the generic message.
func WriteError(c *gin.Context, log *zap.Logger, err error, formData interface{}) {
	se := services.AsError(err)
	status := StatusFor(se.Kind)
	if status >= http.StatusInternalServerError {
		if log == nil {
			log = zap.NewNop()
		}
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(se.Err),
		)
	}
	_ = c.Error(err)
	utils.JSONFailure(c, status, se.Code, se.Messages, formData)
	c.Abort()
}
