package payment

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func preselectedOptions() Options {
	return Options{
		MerchantAccountID: "ma-1",
		ProviderID:        "mock-payments-gb-redirect",
		SchemeID:          "faster_payments_service",
		Remitter: &Remitter{
			SortCode:      "101010",
			AccountNumber: "12345681",
			HolderName:    "Chris Carty",
		},
	}
}

func sampleRequest() Request {
	return Request{
		Amount:       decimal.RequireFromString("10.50"),
		Currency:     "GBP",
		Reference:    "order 42",
		MerchantName: "Coffee Co",
		PayerID:      "payer-1",
		PayerName:    "Jane Doe",
		PayerPhone:   "+447700900000",
	}
}

func TestBuildPreselected(t *testing.T) {
	got, err := NewBuilder(preselectedOptions()).Build(sampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := `{"payment_method":{"type":"bank_transfer","provider_selection":{"type":"preselected",` +
		`"scheme_selection":{"type":"instant_only","allow_remitter_fee":false},` +
		`"remitter":{"account_identifier":{"type":"sort_code_account_number","sort_code":"101010","account_number":"12345681"},"account_holder_name":"Chris Carty"},` +
		`"provider_id":"mock-payments-gb-redirect","scheme_id":"faster_payments_service"},` +
		`"beneficiary":{"type":"merchant_account","merchant_account_id":"ma-1","account_holder_name":"Coffee Co","reference":"order 42"}},` +
		`"user":{"id":"payer-1","name":"Jane Doe","phone":"+447700900000"},` +
		`"amount_in_minor":1050,"currency":"GBP"}`

	if string(got) != want {
		t.Errorf("body mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildUserSelectedWithoutRemitter(t *testing.T) {
	opts := preselectedOptions()
	opts.Remitter = nil
	opts.AllowRemitterFee = true

	got, err := NewBuilder(opts).Build(sampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var decoded struct {
		PaymentMethod struct {
			ProviderSelection map[string]any `json:"provider_selection"`
		} `json:"payment_method"`
	}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	sel := decoded.PaymentMethod.ProviderSelection
	if sel["type"] != "user_selected" {
		t.Errorf("type = %v, want user_selected", sel["type"])
	}
	for _, key := range []string{"remitter", "provider_id", "scheme_id"} {
		if _, ok := sel[key]; ok {
			t.Errorf("unexpected %s in user_selected provider selection", key)
		}
	}
	scheme := sel["scheme_selection"].(map[string]any)
	if scheme["allow_remitter_fee"] != true {
		t.Errorf("allow_remitter_fee = %v, want true", scheme["allow_remitter_fee"])
	}
}

func TestBuildDeterministic(t *testing.T) {
	b := NewBuilder(preselectedOptions())

	first, err := b.Build(sampleRequest())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := b.Build(sampleRequest())
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("build %d differs:\n%s\n%s", i, first, again)
		}
	}
}

func TestToMinor(t *testing.T) {
	tests := []struct {
		major string
		want  int64
	}{
		{"10", 1000},
		{"10.5", 1050},
		{"10.005", 1001},
		{"10.004", 1000},
		{"0.01", 1},
		{"33.33", 3333},
		{"1234.567", 123457},
	}

	for _, tt := range tests {
		if got := ToMinor(decimal.RequireFromString(tt.major)); got != tt.want {
			t.Errorf("ToMinor(%s) = %d, want %d", tt.major, got, tt.want)
		}
	}
}

func TestBuildRoundsHalfUp(t *testing.T) {
	req := sampleRequest()
	req.Amount = decimal.RequireFromString("10.005")

	got, err := NewBuilder(preselectedOptions()).Build(req)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !bytes.Contains(got, []byte(`"amount_in_minor":1001,`)) {
		t.Errorf("expected 1001 minor units, got %s", got)
	}
}

func TestBuildEscapesFreeText(t *testing.T) {
	req := sampleRequest()
	req.MerchantName = `Bob's "Bakery"`
	req.Reference = `x","currency":"USD`

	got, err := NewBuilder(preselectedOptions()).Build(req)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	var decoded struct {
		PaymentMethod struct {
			Beneficiary struct {
				AccountHolderName string `json:"account_holder_name"`
				Reference         string `json:"reference"`
			} `json:"beneficiary"`
		} `json:"payment_method"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded.PaymentMethod.Beneficiary.AccountHolderName != req.MerchantName {
		t.Errorf("merchant name = %q", decoded.PaymentMethod.Beneficiary.AccountHolderName)
	}
	if decoded.PaymentMethod.Beneficiary.Reference != req.Reference {
		t.Errorf("reference = %q", decoded.PaymentMethod.Beneficiary.Reference)
	}
	if decoded.Currency != "GBP" {
		t.Errorf("currency = %q, want GBP", decoded.Currency)
	}
}

func TestBuildValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"zero amount", func(r *Request) { r.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(r *Request) { r.Amount = decimal.RequireFromString("-1") }, ErrInvalidAmount},
		{"rounds to zero", func(r *Request) { r.Amount = decimal.RequireFromString("0.004") }, ErrInvalidAmount},
		{"lowercase currency", func(r *Request) { r.Currency = "gbp" }, ErrInvalidCurrency},
		{"long currency", func(r *Request) { r.Currency = "GBPX" }, ErrInvalidCurrency},
		{"missing reference", func(r *Request) { r.Reference = " " }, ErrMissingField},
		{"missing payer", func(r *Request) { r.PayerID = "" }, ErrMissingField},
		{"control chars", func(r *Request) { r.PayerName = "Jane\nDoe" }, ErrInvalidField},
	}

	b := NewBuilder(preselectedOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleRequest()
			tt.mutate(&req)

			_, err := b.Build(req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
