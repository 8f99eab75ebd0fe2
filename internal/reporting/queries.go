package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDetail combines a recorded transaction with its audit trail.
type TransactionDetail struct {
	TransactionID         uint64
	PaymentID             string
	AccountID             string
	RecommenderID         string
	Currency              string
	TotalAmount           decimal.Decimal
	RvnuFee               decimal.Decimal
	RecommenderCommission decimal.Decimal
	AssetsUpdated         bool
	Reference             string
	CreatedAt             time.Time
	AuditLogs             []AuditEntry
}

type AuditEntry struct {
	Action    string
	Status    string
	Message   *string
	Timestamp time.Time
}

// Totals sums the money columns of a report.
type Totals struct {
	Count                 int
	TotalAmount           decimal.Decimal
	RvnuFee               decimal.Decimal
	RecommenderCommission decimal.Decimal
}

// GetMerchantTransactionsWithAudit fetches every transaction for a merchant
// in [from, to), newest first, with the audit entries of each payment.
func GetMerchantTransactionsWithAudit(ctx context.Context, db *sql.DB, merchantID string, from, to time.Time) ([]TransactionDetail, error) {

	txnQuery := `
        SELECT
            t.TransactionID,
            t.PaymentID,
            t.AccountID,
            t.RecommenderID,
            t.Currency,
            t.TotalAmount,
            t.RvnuFee,
            t.RecommenderCommission,
            t.RecommenderAssetsUpdated,
            t.Reference,
            t.DateTime
        FROM RvnuTransaction t
        WHERE t.MerchantID = ? AND t.DateTime >= ? AND t.DateTime < ?
        ORDER BY t.DateTime DESC, t.TransactionID DESC
    `

	rows, err := db.QueryContext(ctx, txnQuery, merchantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var details []TransactionDetail
	for rows.Next() {
		var d TransactionDetail
		if err := rows.Scan(&d.TransactionID, &d.PaymentID, &d.AccountID, &d.RecommenderID, &d.Currency,
			&d.TotalAmount, &d.RvnuFee, &d.RecommenderCommission, &d.AssetsUpdated, &d.Reference, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range details {
		audits, err := auditTrail(ctx, db, details[i].PaymentID)
		if err != nil {
			return nil, err
		}
		details[i].AuditLogs = audits
	}

	return details, nil
}

func auditTrail(ctx context.Context, db *sql.DB, paymentID string) ([]AuditEntry, error) {
	auditQuery := `
        SELECT action, status, message, created_at
        FROM audit_logs
        WHERE subject = ?
        ORDER BY created_at ASC, id ASC
    `

	rows, err := db.QueryContext(ctx, auditQuery, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var audits []AuditEntry
	for rows.Next() {
		var (
			entry   AuditEntry
			message sql.NullString
		)
		if err := rows.Scan(&entry.Action, &entry.Status, &message, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entry.Message = nullStringToPtr(message)
		audits = append(audits, entry)
	}

	return audits, rows.Err()
}

func Summarize(details []TransactionDetail) Totals {
	t := Totals{Count: len(details)}
	for _, d := range details {
		t.TotalAmount = t.TotalAmount.Add(d.TotalAmount)
		t.RvnuFee = t.RvnuFee.Add(d.RvnuFee)
		t.RecommenderCommission = t.RecommenderCommission.Add(d.RecommenderCommission)
	}
	return t
}

func nullStringToPtr(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}
