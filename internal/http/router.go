package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/middleware"
)

type Handlers struct {
	Payments     *PaymentHandler
	Transactions *TransactionHandler
	Health       *HealthHandler
}

func NewRouter(h Handlers, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	r.GET("/health", h.Health.Health)

	r.POST("/getAccessToken", h.Payments.AccessToken)
	r.POST("/initiatePayment", h.Payments.InitiatePayment)
	r.GET("/status/:paymentId", h.Payments.PaymentStatus)

	r.POST("/storeTransaction", h.Transactions.StoreTransaction)
	r.GET("/merchants/:merchantId/transactions", h.Transactions.MerchantTransactions)
	r.GET("/payments/:paymentId/audit", h.Transactions.PaymentAudit)

	return r
}
