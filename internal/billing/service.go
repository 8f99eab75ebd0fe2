package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Chris-Carty/Piggy-Bank-Server/internal/audit"
	"github.com/Chris-Carty/Piggy-Bank-Server/internal/middleware"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type Service struct {
	repo   TransactionRepository
	audit  audit.Repository
	logger *slog.Logger
}

func NewService(repo TransactionRepository, auditRepo audit.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  auditRepo,
		logger: logger,
	}
}

// RecordTransaction stores a completed payment with its fees. Each payment id
// is recorded once; repeating the call returns the stored row with
// Created=false. An unknown merchant fails before anything is written.
func (s *Service) RecordTransaction(ctx context.Context, req RecordRequest) (*Recorded, error) {
	reqID := middleware.GetRequestID(ctx)

	s.logger.Info("transaction recording started",
		"request_id", reqID,
		"payment_id", req.PaymentID,
		"merchant_id", req.MerchantID,
		"amount", req.Amount.String(),
	)

	// The store keeps two decimal places; fees are derived from the stored value.
	req.Amount = req.Amount.Round(2)

	if err := validateRecord(req); err != nil {
		return nil, err
	}

	merchant, err := s.repo.GetMerchant(ctx, req.MerchantID)
	if err != nil {
		s.fail(ctx, req, err)
		return nil, err
	}

	fees, err := ComputeFees(req.Amount, merchant.CommissionPercentage)
	if err != nil {
		s.fail(ctx, req, err)
		return nil, err
	}

	txn := &RvnuTransaction{
		PaymentID:                req.PaymentID,
		MerchantID:               merchant.ID,
		AccountID:                req.AccountID,
		Currency:                 req.Currency,
		TotalAmount:              req.Amount,
		RvnuFee:                  fees.PlatformFee,
		RecommenderID:            req.RecommenderID,
		RecommenderCommission:    fees.RecommenderCommission,
		RecommenderAssetsUpdated: false,
		Reference:                req.Reference,
	}

	txnID, created, err := s.repo.UpsertTransaction(ctx, txn)
	if err != nil {
		s.fail(ctx, req, err)
		return nil, err
	}

	stored, err := s.repo.GetTransaction(ctx, txnID)
	if err != nil {
		s.fail(ctx, req, err)
		return nil, err
	}

	if !created && !sameTransaction(stored, txn) {
		err := fmt.Errorf("%w: %s", ErrPaymentConflict, req.PaymentID)
		s.fail(ctx, req, err)
		return nil, err
	}

	status := audit.StatusSuccess
	if created {
		s.logger.Info("transaction recorded",
			"request_id", reqID,
			"payment_id", req.PaymentID,
			"txn_id", txnID,
			"rvnu_fee", fees.PlatformFee.StringFixed(2),
			"recommender_commission", fees.RecommenderCommission.StringFixed(2),
		)
	} else {
		status = audit.StatusDuplicate
		s.logger.Warn("transaction already recorded",
			"request_id", reqID,
			"payment_id", req.PaymentID,
			"txn_id", txnID,
		)
	}
	s.record(ctx, audit.Entry(reqID, audit.ActionRecordTransaction, status, req.PaymentID, nil))

	return &Recorded{Transaction: stored, Created: created}, nil
}

func (s *Service) ListMerchantTransactions(ctx context.Context, merchantID string, limit int) ([]RvnuTransaction, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, fmt.Errorf("%w: merchant id", ErrMissingField)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	if _, err := s.repo.GetMerchant(ctx, merchantID); err != nil {
		return nil, err
	}
	return s.repo.ListMerchantTransactions(ctx, merchantID, limit)
}

func validateRecord(req RecordRequest) error {
	fields := []struct {
		name  string
		value string
	}{
		{"payment id", req.PaymentID},
		{"merchant id", req.MerchantID},
		{"account id", req.AccountID},
		{"recommender id", req.RecommenderID},
		{"currency", req.Currency},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// sameTransaction reports whether a stored row describes the same payment as
// a new request. Timestamps and ids are assigned by the store and ignored.
func sameTransaction(stored, req *RvnuTransaction) bool {
	return stored.MerchantID == req.MerchantID &&
		stored.AccountID == req.AccountID &&
		stored.RecommenderID == req.RecommenderID &&
		stored.Currency == req.Currency &&
		stored.TotalAmount.Equal(req.TotalAmount) &&
		stored.Reference == req.Reference
}

func (s *Service) fail(ctx context.Context, req RecordRequest, err error) {
	reqID := middleware.GetRequestID(ctx)

	level := slog.LevelError
	if errors.Is(err, ErrMerchantNotFound) {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "transaction recording failed",
		"request_id", reqID,
		"payment_id", req.PaymentID,
		"merchant_id", req.MerchantID,
		"error", err,
	)
	s.record(ctx, audit.Entry(reqID, audit.ActionRecordTransaction, audit.StatusFailed, req.PaymentID, err))
}

func (s *Service) record(ctx context.Context, entry *audit.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn("audit log write failed",
			"request_id", entry.RequestID,
			"action", entry.Action,
			"error", err,
		)
	}
}
