package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := Files()
	if err != nil {
		t.Fatalf("Files failed: %v", err)
	}

	want := []string{
		"00001_create_merchant.sql",
		"00002_create_rvnu_transaction.sql",
		"00003_create_audit_logs.sql",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("migrations = %v, want %v", names, want)
	}
}

func TestTransactionTableEnforcesUniquePaymentID(t *testing.T) {
	b, err := files.ReadFile("sql/00002_create_rvnu_transaction.sql")
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}
	if !strings.Contains(string(b), "UNIQUE KEY uq_rvnu_transaction_payment (PaymentID)") {
		t.Error("expected a unique constraint on PaymentID")
	}
	if !strings.Contains(string(b), "-- +goose Down") {
		t.Error("expected a down migration")
	}
}
