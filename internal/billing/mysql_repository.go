package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

const transactionColumns = `
        TransactionID, PaymentID, MerchantID, AccountID, DateTime, Currency,
        TotalAmount, RvnuFee, RecommenderID, RecommenderCommission,
        RecommenderAssetsUpdated, Reference`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*RvnuTransaction, error) {
	var txn RvnuTransaction
	err := row.Scan(
		&txn.TransactionID,
		&txn.PaymentID,
		&txn.MerchantID,
		&txn.AccountID,
		&txn.DateTime,
		&txn.Currency,
		&txn.TotalAmount,
		&txn.RvnuFee,
		&txn.RecommenderID,
		&txn.RecommenderCommission,
		&txn.RecommenderAssetsUpdated,
		&txn.Reference,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *MySQLRepository) GetMerchant(ctx context.Context, merchantID string) (*Merchant, error) {
	query := `
        SELECT MerchantID, Name, CommissionPercentage
        FROM Merchant
        WHERE MerchantID = ?
    `

	var m Merchant
	err := r.db.QueryRowContext(ctx, query, merchantID).Scan(&m.ID, &m.Name, &m.CommissionPercentage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrMerchantNotFound, merchantID)
	}
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("fetch merchant %s", merchantID), Err: err}
	}

	return &m, nil
}

// UpsertTransaction relies on the unique key on PaymentID. On a duplicate the
// existing row is left untouched and LAST_INSERT_ID is pointed at it, so the
// driver reports zero affected rows and the existing id.
func (r *MySQLRepository) UpsertTransaction(ctx context.Context, txn *RvnuTransaction) (uint64, bool, error) {
	query := `
        INSERT INTO RvnuTransaction (PaymentID, MerchantID, AccountID, DateTime, Currency,
        TotalAmount, RvnuFee, RecommenderID, RecommenderCommission,
        RecommenderAssetsUpdated, Reference)
        VALUES (?, ?, ?, CURRENT_TIMESTAMP, ?, ?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE TransactionID = LAST_INSERT_ID(TransactionID)
    `

	result, err := r.db.ExecContext(ctx, query,
		txn.PaymentID,
		txn.MerchantID,
		txn.AccountID,
		txn.Currency,
		txn.TotalAmount,
		txn.RvnuFee,
		txn.RecommenderID,
		txn.RecommenderCommission,
		txn.RecommenderAssetsUpdated,
		txn.Reference,
	)
	if err != nil {
		return 0, false, &StorageError{Op: "insert transaction", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, &StorageError{Op: "read inserted transaction id", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, &StorageError{Op: "read affected rows", Err: err}
	}

	return uint64(id), affected == 1, nil
}

func (r *MySQLRepository) GetTransaction(ctx context.Context, transactionID uint64) (*RvnuTransaction, error) {
	query := `SELECT` + transactionColumns + `
        FROM RvnuTransaction
        WHERE TransactionID = ?
    `

	txn, err := scanTransaction(r.db.QueryRowContext(ctx, query, transactionID))
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("fetch transaction %d", transactionID), Err: err}
	}
	return txn, nil
}

func (r *MySQLRepository) ListMerchantTransactions(ctx context.Context, merchantID string, limit int) ([]RvnuTransaction, error) {
	query := `SELECT` + transactionColumns + `
        FROM RvnuTransaction
        WHERE MerchantID = ?
        ORDER BY DateTime DESC, TransactionID DESC
        LIMIT ?
    `

	rows, err := r.db.QueryContext(ctx, query, merchantID, limit)
	if err != nil {
		return nil, &StorageError{Op: "list transactions", Err: err}
	}
	defer rows.Close()

	var txns []RvnuTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan transaction", Err: err}
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list transactions", Err: err}
	}

	return txns, nil
}
