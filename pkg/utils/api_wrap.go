package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps service sentinels to HTTP responses. Anything
// unknown is logged and reported as a 500.
func HandleServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTripNotFound):
		RespondError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrActivityNotFound):
		RespondError(c, http.StatusNotFound, "Activity not found")
	case errors.Is(err, ErrTripLocked):
		RespondError(c, http.StatusForbidden, "Trip is locked until payment is completed")
	case errors.Is(err, ErrPaymentNotCompleted):
		RespondError(c, http.StatusPaymentRequired, "Payment has not been completed")
	case errors.Is(err, ErrPaymentsDisabled):
		RespondError(c, http.StatusServiceUnavailable, "Payments are not available")
	case errors.Is(err, ErrPaymentProvider):
		log.Warn("payment provider error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusBadGateway, "Payment provider unavailable")
	case errors.Is(err, ErrGenerationFailed):
		log.Warn("generation failed", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusInternalServerError, "Generation failed")
	case errors.Is(err, ErrDatabaseError):
		log.Error("database error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("unknown error", zap.Error(err), zap.String("trace_id", traceID(c)))
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
