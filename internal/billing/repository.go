package billing

import "context"

type TransactionRepository interface {
	GetMerchant(ctx context.Context, merchantID string) (*Merchant, error)

	// UpsertTransaction inserts txn unless its PaymentID already exists. It
	// returns the id of the stored row and whether it was newly created.
	UpsertTransaction(ctx context.Context, txn *RvnuTransaction) (uint64, bool, error)

	GetTransaction(ctx context.Context, transactionID uint64) (*RvnuTransaction, error)

	ListMerchantTransactions(ctx context.Context, merchantID string, limit int) ([]RvnuTransaction, error)
}
