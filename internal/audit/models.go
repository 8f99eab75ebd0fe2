package audit

import "time"

type Status string

const (
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusDuplicate Status = "DUPLICATE"
)

const (
	ActionAccessToken       = "access_token"
	ActionInitiatePayment   = "initiate_payment"
	ActionRecordTransaction = "record_transaction"
)

// AuditLog is one outcome of an inbound operation. Subject is the payment id
// (or merchant id when no payment exists yet).
type AuditLog struct {
	ID        uint64    `json:"id"`
	RequestID string    `json:"request_id"`
	Action    string    `json:"action"`
	Status    Status    `json:"status"`
	Subject   string    `json:"subject"`
	Message   *string   `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func Entry(requestID, action string, status Status, subject string, err error) *AuditLog {
	entry := &AuditLog{
		RequestID: requestID,
		Action:    action,
		Status:    status,
		Subject:   subject,
	}
	if err != nil {
		msg := err.Error()
		entry.Message = &msg
	}
	return entry
}
