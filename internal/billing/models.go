package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

type Merchant struct {
	ID                   string          `json:"merchant_id"`
	Name                 string          `json:"name"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage"`
}

// RvnuTransaction is a completed payment with the platform fee and the
// recommender's commission. DateTime is assigned by the database.
type RvnuTransaction struct {
	TransactionID            uint64          `json:"transaction_id"`
	PaymentID                string          `json:"payment_id"`
	MerchantID               string          `json:"merchant_id"`
	AccountID                string          `json:"account_id"`
	DateTime                 time.Time       `json:"date_time"`
	Currency                 string          `json:"currency"`
	TotalAmount              decimal.Decimal `json:"total_amount"`
	RvnuFee                  decimal.Decimal `json:"rvnu_fee"`
	RecommenderID            string          `json:"recommender_id"`
	RecommenderCommission    decimal.Decimal `json:"recommender_commission"`
	RecommenderAssetsUpdated bool            `json:"recommender_assets_updated"`
	Reference                string          `json:"reference"`
}

type RecordRequest struct {
	PaymentID     string
	MerchantID    string
	AccountID     string
	RecommenderID string
	Currency      string
	Amount        decimal.Decimal
	Reference     string
}

// Recorded reports whether RecordTransaction wrote a new row or found the
// payment already recorded.
type Recorded struct {
	Transaction *RvnuTransaction
	Created     bool
}
