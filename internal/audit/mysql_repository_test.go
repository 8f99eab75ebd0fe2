package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	entry := Entry("req-1", ActionRecordTransaction, StatusFailed, "pay-1", errors.New("merchant not found"))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs("req-1", ActionRecordTransaction, StatusFailed, "pay-1", entry.Message).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewMySQLRepository(db).Log(context.Background(), entry); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLogWrapsError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	boom := errors.New("table missing")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).WillReturnError(boom)

	err = NewMySQLRepository(db).Log(context.Background(), Entry("r", ActionAccessToken, StatusSuccess, "", nil))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
}

func TestGetBySubject(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "request_id", "action", "status", "subject", "message", "created_at"}).
		AddRow(1, "req-1", ActionInitiatePayment, "SUCCESS", "pay-1", nil, now).
		AddRow(2, "req-2", ActionRecordTransaction, "DUPLICATE", "pay-1", "already recorded", now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM audit_logs")).WithArgs("pay-1").WillReturnRows(rows)

	logs, err := NewMySQLRepository(db).GetBySubject(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].Message != nil {
		t.Errorf("expected nil message, got %q", *logs[0].Message)
	}
	if logs[1].Status != StatusDuplicate || logs[1].Message == nil || *logs[1].Message != "already recorded" {
		t.Errorf("unexpected second entry: %+v", logs[1])
	}
}
