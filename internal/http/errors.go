package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/billing"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/payment"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/truelayer"
)

type ErrorResponse struct {
	Error          string          `json:"error"`
	Message        string          `json:"message"`
	UpstreamStatus int             `json:"upstream_status,omitempty"`
	Upstream       json.RawMessage `json:"upstream,omitempty"`
}

var badRequestErrors = []error{
	payment.ErrInvalidAmount,
	payment.ErrInvalidCurrency,
	payment.ErrInvalidField,
	payment.ErrMissingField,
	payment.ErrMissingAccessToken,
	billing.ErrInvalidAmount,
	billing.ErrMissingField,
	truelayer.ErrMissingPaymentID,
}

func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	var storageErr *billing.StorageError
	var upstreamErr *truelayer.UpstreamError

	switch {
	case errors.Is(err, billing.ErrMerchantNotFound):
		return http.StatusNotFound
	case errors.Is(err, billing.ErrPaymentConflict):
		return http.StatusConflict
	case errors.As(err, &storageErr):
		return http.StatusConflict
	case errors.As(err, &upstreamErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to a structured response. Upstream
// payloads are passed through so callers can see the provider's reason.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := statusFor(err)
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
	}

	var upstreamErr *truelayer.UpstreamError
	if errors.As(err, &upstreamErr) {
		resp.UpstreamStatus = upstreamErr.StatusCode
		if json.Valid(upstreamErr.Body) {
			resp.Upstream = upstreamErr.Body
		}
	}

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: message,
	})
}
