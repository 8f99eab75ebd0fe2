package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/payment"
)

type PaymentService interface {
	AccessToken(ctx context.Context) (string, error)
	Initiate(ctx context.Context, accessToken string, req payment.Request) (*payment.Initiation, error)
	Status(ctx context.Context, accessToken, paymentID string) ([]byte, error)
}

type PaymentHandler struct {
	service PaymentService
	timeout time.Duration
}

func NewPaymentHandler(service PaymentService, timeout time.Duration) *PaymentHandler {
	return &PaymentHandler{service: service, timeout: timeout}
}

type accessTokenResponse struct {
	AccessToken string `json:"access_token"`
}

type initiatePaymentPayload struct {
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" binding:"required"`
	Reference      string          `json:"reference" binding:"required"`
	MerchantName   string          `json:"merchantName" binding:"required"`
	PayerMobile    string          `json:"payerMobile"`
	PayerName      string          `json:"payerName" binding:"required"`
	PayerAccountID string          `json:"payerAccountID" binding:"required"`
	AccessToken    string          `json:"accessToken"`
}

func (h *PaymentHandler) AccessToken(c *gin.Context) {
	ctx, cancel := detached(c, h.timeout)
	defer cancel()

	token, err := h.service.AccessToken(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, accessTokenResponse{AccessToken: token})
}

func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var payload initiatePaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	token := payload.AccessToken
	if token == "" {
		token = bearerToken(c)
	}

	ctx, cancel := detached(c, h.timeout)
	defer cancel()

	initiation, err := h.service.Initiate(ctx, token, payment.Request{
		Amount:       payload.Amount,
		Currency:     strings.TrimSpace(payload.Currency),
		Reference:    payload.Reference,
		MerchantName: payload.MerchantName,
		PayerID:      payload.PayerAccountID,
		PayerName:    payload.PayerName,
		PayerPhone:   payload.PayerMobile,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, initiation)
}

// PaymentStatus relays the provider's status payload unchanged.
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	ctx, cancel := detached(c, h.timeout)
	defer cancel()

	status, err := h.service.Status(ctx, bearerToken(c), c.Param("paymentId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", status)
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	auth := c.GetHeader("Authorization")
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

// detached keeps request values but ignores client cancellation, so a
// disconnect does not abort a payment or write already in flight.
func detached(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), timeout)
}
