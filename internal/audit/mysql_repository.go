package audit

import (
	"context"
	"database/sql"
	"fmt"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Log(ctx context.Context, entry *AuditLog) error {
	query := `INSERT INTO audit_logs (request_id, action, status, subject, message)
              VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		entry.RequestID,
		entry.Action,
		entry.Status,
		entry.Subject,
		entry.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetBySubject returns the audit trail for one payment, oldest first.
func (r *MySQLRepository) GetBySubject(ctx context.Context, subject string) ([]AuditLog, error) {
	query := `
        SELECT id, request_id, action, status, subject, message, created_at
        FROM audit_logs
        WHERE subject = ?
        ORDER BY created_at ASC, id ASC
    `

	rows, err := r.db.QueryContext(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var (
			entry   AuditLog
			message sql.NullString
		)
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Action, &entry.Status,
			&entry.Subject, &message, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if message.Valid {
			entry.Message = &message.String
		}
		logs = append(logs, entry)
	}

	return logs, rows.Err()
}
