package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/audit"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/billing"
)

type TransactionService interface {
	RecordTransaction(ctx context.Context, req billing.RecordRequest) (*billing.Recorded, error)
	ListMerchantTransactions(ctx context.Context, merchantID string, limit int) ([]billing.RvnuTransaction, error)
}

type AuditReader interface {
	GetBySubject(ctx context.Context, subject string) ([]audit.AuditLog, error)
}

type TransactionHandler struct {
	service TransactionService
	audit   AuditReader
	timeout time.Duration
}

func NewTransactionHandler(service TransactionService, auditReader AuditReader, timeout time.Duration) *TransactionHandler {
	return &TransactionHandler{service: service, audit: auditReader, timeout: timeout}
}

type storeTransactionPayload struct {
	TransactionID  string          `json:"transactionID" binding:"required"`
	MerchantID     string          `json:"merchantID" binding:"required"`
	PayerAccountID string          `json:"payerAccountID" binding:"required"`
	RecommenderID  string          `json:"recommenderID" binding:"required"`
	Currency       string          `json:"currency" binding:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference"`
}

type storeTransactionResponse struct {
	Created     bool                     `json:"created"`
	Transaction *billing.RvnuTransaction `json:"transaction"`
}

func (h *TransactionHandler) StoreTransaction(c *gin.Context) {
	var payload storeTransactionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	ctx, cancel := detached(c, h.timeout)
	defer cancel()

	recorded, err := h.service.RecordTransaction(ctx, billing.RecordRequest{
		PaymentID:     payload.TransactionID,
		MerchantID:    payload.MerchantID,
		AccountID:     payload.PayerAccountID,
		RecommenderID: payload.RecommenderID,
		Currency:      strings.TrimSpace(payload.Currency),
		Amount:        payload.Amount,
		Reference:     payload.Reference,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if recorded.Created {
		status = http.StatusCreated
	}
	c.JSON(status, storeTransactionResponse{
		Created:     recorded.Created,
		Transaction: recorded.Transaction,
	})
}

func (h *TransactionHandler) MerchantTransactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	txns, err := h.service.ListMerchantTransactions(ctx, c.Param("merchantId"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if txns == nil {
		txns = []billing.RvnuTransaction{}
	}

	c.JSON(http.StatusOK, txns)
}

func (h *TransactionHandler) PaymentAudit(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	logs, err := h.audit.GetBySubject(ctx, c.Param("paymentId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if logs == nil {
		logs = []audit.AuditLog{}
	}

	c.JSON(http.StatusOK, logs)
}
