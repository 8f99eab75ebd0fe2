package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/audit"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/billing"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/config"
	apphttp "github.com/Chris-Carty/Piggy-Bank-Server/internal/http"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/payment"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/signing"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/truelayer"
	"github.com/Chris-Carty/Piggy-Bank-Server/pkg/logger"
)

func main() {
	logr := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	db, err := config.ConnectDB(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	signer, err := signing.New(cfg.TrueLayer.SigningKeyID, cfg.TrueLayer.PrivateKeyPEM)
	if err != nil {
		log.Fatal(err)
	}
	logr.Info("request signing ready", "key_id", signer.KeyID())

	auditRepo := audit.NewMySQLRepository(db)

	opts := payment.Options{
		MerchantAccountID: cfg.TrueLayer.MerchantAccountID,
		ProviderID:        cfg.Payment.ProviderID,
		SchemeID:          cfg.Payment.SchemeID,
		AllowRemitterFee:  cfg.Payment.AllowRemitterFee,
	}
	if cfg.Payment.RemitterSortCode != "" {
		opts.Remitter = &payment.Remitter{
			SortCode:      cfg.Payment.RemitterSortCode,
			AccountNumber: cfg.Payment.RemitterAccountNumber,
			HolderName:    cfg.Payment.RemitterHolderName,
		}
	}

	paymentService := payment.NewService(
		truelayer.NewClient(cfg.TrueLayer),
		signer,
		payment.NewBuilder(opts),
		payment.RedirectOptions{
			HostedPaymentURL: cfg.TrueLayer.HostedPaymentURL,
			ReturnURI:        cfg.TrueLayer.ReturnURI,
			ColorPrimary:     cfg.Payment.ColorPrimary,
			ColorSecondary:   cfg.Payment.ColorSecondary,
			ColorTertiary:    cfg.Payment.ColorTertiary,
		},
		auditRepo,
		logr,
	)
	billingService := billing.NewService(billing.NewMySQLRepository(db), auditRepo, logr)

	gin.SetMode(gin.ReleaseMode)
	router := apphttp.NewRouter(apphttp.Handlers{
		Payments:     apphttp.NewPaymentHandler(paymentService, cfg.RequestTimeout),
		Transactions: apphttp.NewTransactionHandler(billingService, auditRepo, cfg.RequestTimeout),
		Health:       apphttp.NewHealthHandler(db),
	}, logr)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server running", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logr.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logr.Error("shutdown did not complete", "error", err)
	}

	logr.Info("server stopped gracefully")
}
