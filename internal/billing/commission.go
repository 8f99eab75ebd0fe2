package billing

import "github.com/shopspring/decimal"

// PlatformFeeRate is the share of every payment kept by the platform.
var PlatformFeeRate = decimal.RequireFromString("0.007")

var hundred = decimal.NewFromInt(100)

type Fees struct {
	PlatformFee           decimal.Decimal `json:"platform_fee"`
	RecommenderCommission decimal.Decimal `json:"recommender_commission"`
}

// ComputeFees derives both fees rounded to two places, half away from zero.
func ComputeFees(amount, commissionPercentage decimal.Decimal) (Fees, error) {
	if amount.IsNegative() {
		return Fees{}, ErrInvalidAmount
	}
	if commissionPercentage.IsNegative() || commissionPercentage.GreaterThan(hundred) {
		return Fees{}, ErrInvalidPercentage
	}

	return Fees{
		PlatformFee:           amount.Mul(PlatformFeeRate).Round(2),
		RecommenderCommission: amount.Mul(commissionPercentage).Div(hundred).Round(2),
	}, nil
}
