package payment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCurrency = errors.New("currency must be a three letter ISO 4217 code")
	ErrInvalidField    = errors.New("field contains control characters")
	ErrMissingField    = errors.New("required field is empty")
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Request holds the normalized fields of a single payment instruction.
type Request struct {
	Amount       decimal.Decimal
	Currency     string
	Reference    string
	MerchantName string
	PayerID      string
	PayerName    string
	PayerPhone   string
}

// Remitter is the payer's bank account when the provider is preselected.
type Remitter struct {
	SortCode      string
	AccountNumber string
	HolderName    string
}

// Options fixes everything in the instruction that is not per-payment.
// A nil Remitter switches to a user_selected provider.
type Options struct {
	MerchantAccountID string
	ProviderID        string
	SchemeID          string
	AllowRemitterFee  bool
	Remitter          *Remitter
}

type Builder struct {
	opts Options
}

func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// ToMinor converts a major-unit amount to minor units, rounding half away
// from zero: 10.005 becomes 1001.
func ToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Build encodes the instruction. Field order is fixed by the struct layout
// so equal requests encode to identical bytes.
func (b *Builder) Build(req Request) ([]byte, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	minor := ToMinor(req.Amount)
	if minor <= 0 {
		return nil, ErrInvalidAmount
	}

	body := instruction{
		PaymentMethod: paymentMethod{
			Type:              "bank_transfer",
			ProviderSelection: b.providerSelection(),
			Beneficiary: beneficiary{
				Type:              "merchant_account",
				MerchantAccountID: b.opts.MerchantAccountID,
				AccountHolderName: req.MerchantName,
				Reference:         req.Reference,
			},
		},
		User: user{
			ID:    req.PayerID,
			Name:  req.PayerName,
			Phone: req.PayerPhone,
		},
		AmountInMinor: minor,
		Currency:      req.Currency,
	}

	out, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment instruction: %w", err)
	}
	return out, nil
}

func (b *Builder) providerSelection() providerSelection {
	sel := providerSelection{
		Type: "user_selected",
		SchemeSelection: schemeSelection{
			Type:             "instant_only",
			AllowRemitterFee: b.opts.AllowRemitterFee,
		},
	}

	if r := b.opts.Remitter; r != nil {
		sel.Type = "preselected"
		sel.ProviderID = b.opts.ProviderID
		sel.SchemeID = b.opts.SchemeID
		sel.Remitter = &remitter{
			AccountIdentifier: accountIdentifier{
				Type:          "sort_code_account_number",
				SortCode:      r.SortCode,
				AccountNumber: r.AccountNumber,
			},
			AccountHolderName: r.HolderName,
		}
	}

	return sel
}

func validate(req Request) error {
	if !req.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !currencyPattern.MatchString(req.Currency) {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, req.Currency)
	}

	fields := []struct {
		name     string
		value    string
		required bool
	}{
		{"reference", req.Reference, true},
		{"merchant name", req.MerchantName, true},
		{"payer id", req.PayerID, true},
		{"payer name", req.PayerName, true},
		{"payer phone", req.PayerPhone, false},
	}
	for _, f := range fields {
		if f.required && strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
		if strings.IndexFunc(f.value, unicode.IsControl) >= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidField, f.name)
		}
	}
	return nil
}

type instruction struct {
	PaymentMethod paymentMethod `json:"payment_method"`
	User          user          `json:"user"`
	AmountInMinor int64         `json:"amount_in_minor"`
	Currency      string        `json:"currency"`
}

type paymentMethod struct {
	Type              string            `json:"type"`
	ProviderSelection providerSelection `json:"provider_selection"`
	Beneficiary       beneficiary       `json:"beneficiary"`
}

type providerSelection struct {
	Type            string          `json:"type"`
	SchemeSelection schemeSelection `json:"scheme_selection"`
	Remitter        *remitter       `json:"remitter,omitempty"`
	ProviderID      string          `json:"provider_id,omitempty"`
	SchemeID        string          `json:"scheme_id,omitempty"`
}

type schemeSelection struct {
	Type             string `json:"type"`
	AllowRemitterFee bool   `json:"allow_remitter_fee"`
}

type remitter struct {
	AccountIdentifier accountIdentifier `json:"account_identifier"`
	AccountHolderName string            `json:"account_holder_name"`
}

type accountIdentifier struct {
	Type          string `json:"type"`
	SortCode      string `json:"sort_code"`
	AccountNumber string `json:"account_number"`
}

type beneficiary struct {
	Type              string `json:"type"`
	MerchantAccountID string `json:"merchant_account_id"`
	AccountHolderName string `json:"account_holder_name"`
	Reference         string `json:"reference"`
}

type user struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}
