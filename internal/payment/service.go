package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/audit"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/middleware"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/signing"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/truelayer"
)

var ErrMissingAccessToken = errors.New("access token is required")

type Gateway interface {
	AccessToken(ctx context.Context) (string, error)
	SubmitPayment(ctx context.Context, accessToken string, req truelayer.SignedRequest) (*truelayer.PaymentCreated, error)
	PaymentStatus(ctx context.Context, accessToken, paymentID string) ([]byte, error)
}

type Signer interface {
	Sign(method, path string, headers []signing.Header, body []byte) (string, error)
}

// Initiation is what the payer needs to authorise a submitted payment.
type Initiation struct {
	PaymentID      string `json:"payment_id"`
	ResourceToken  string `json:"resource_token"`
	RedirectURL    string `json:"redirect_url"`
	IdempotencyKey string `json:"idempotency_key"`
}

type Service struct {
	gateway  Gateway
	signer   Signer
	builder  *Builder
	redirect RedirectOptions
	audit    audit.Repository
	logger   *slog.Logger

	newIdempotencyKey func() string
}

func NewService(gateway Gateway, signer Signer, builder *Builder, redirect RedirectOptions, auditRepo audit.Repository, logger *slog.Logger) *Service {
	return &Service{
		gateway:           gateway,
		signer:            signer,
		builder:           builder,
		redirect:          redirect,
		audit:             auditRepo,
		logger:            logger,
		newIdempotencyKey: uuid.NewString,
	}
}

func (s *Service) AccessToken(ctx context.Context) (string, error) {
	token, err := s.gateway.AccessToken(ctx)
	if err != nil {
		s.logger.Error("access token request failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		s.record(ctx, audit.ActionAccessToken, audit.StatusFailed, "", err)
		return "", err
	}
	return token, nil
}

// Initiate builds, signs and submits a payment. A fresh idempotency key is
// generated per call, so a retried call is a new payment at the provider.
func (s *Service) Initiate(ctx context.Context, accessToken string, req Request) (*Initiation, error) {
	reqID := middleware.GetRequestID(ctx)

	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}

	body, err := s.builder.Build(req)
	if err != nil {
		return nil, err
	}

	key := s.newIdempotencyKey()
	headers := []signing.Header{
		{Name: "Idempotency-Key", Value: key},
		{Name: "Content-Type", Value: "application/json"},
	}

	sig, err := s.signer.Sign("POST", truelayer.PaymentsPath, headers, body)
	if err != nil {
		return nil, fmt.Errorf("sign payment: %w", err)
	}

	s.logger.Info("payment initiation started",
		"request_id", reqID,
		"idempotency_key", key,
		"amount", req.Amount.String(),
		"currency", req.Currency,
	)

	created, err := s.gateway.SubmitPayment(ctx, accessToken, truelayer.SignedRequest{
		Path:      truelayer.PaymentsPath,
		Headers:   headers,
		Body:      body,
		Signature: sig,
	})
	if err != nil {
		s.logger.Error("payment initiation failed",
			"request_id", reqID,
			"idempotency_key", key,
			"error", err,
		)
		s.record(ctx, audit.ActionInitiatePayment, audit.StatusFailed, "", err)
		return nil, err
	}

	s.logger.Info("payment initiated",
		"request_id", reqID,
		"payment_id", created.ID,
	)
	s.record(ctx, audit.ActionInitiatePayment, audit.StatusSuccess, created.ID, nil)

	return &Initiation{
		PaymentID:      created.ID,
		ResourceToken:  created.ResourceToken,
		RedirectURL:    s.redirect.RedirectURL(created.ID, created.ResourceToken),
		IdempotencyKey: key,
	}, nil
}

func (s *Service) Status(ctx context.Context, accessToken, paymentID string) ([]byte, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	return s.gateway.PaymentStatus(ctx, accessToken, paymentID)
}

// record writes an audit entry. Audit failures are logged, not returned.
func (s *Service) record(ctx context.Context, action string, status audit.Status, subject string, cause error) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry(middleware.GetRequestID(ctx), action, status, subject, cause)
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed",
			"request_id", entry.RequestID,
			"action", action,
			"error", err,
		)
	}
}
