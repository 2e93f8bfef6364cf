// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"inactivity_notifier/internal/domain/notification"
)

// PostgresNotificationRepository stores attempts in the email_logs table.
type PostgresNotificationRepository struct {
	db *sql.DB
}

var _ notification.LogRepository = (*PostgresNotificationRepository)(nil)

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) FindSent(ctx context.Context, userID string, category notification.Category, since time.Time) ([]*notification.LogEntry, error) {
	query := `SELECT id::text, user_id::text, email_type, sent_at, status, error_message
               FROM email_logs
               WHERE user_id = $1 AND email_type = $2 AND status = $3 AND sent_at >= $4
               ORDER BY sent_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, category, notification.StatusSent, since)
	if err != nil {
		return nil, fmt.Errorf("error querying sent notifications: %w", err)
	}
	defer rows.Close()
	return scanLogEntries(rows)
}

func (r *PostgresNotificationRepository) Append(ctx context.Context, e *notification.LogEntry) error {
	query := `INSERT INTO email_logs (id, user_id, email_type, sent_at, status, error_message)
               VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.UserID, e.Category, e.SentAt, e.Status, e.FailureDetail)
	if err != nil {
		return fmt.Errorf("error appending notification log entry: %w", err)
	}
	return nil
}

// Helper to scan multiple rows
func scanLogEntries(rows *sql.Rows) ([]*notification.LogEntry, error) {
	entries := make([]*notification.LogEntry, 0)
	for rows.Next() {
		e := notification.LogEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Category, &e.SentAt, &e.Status, &e.FailureDetail); err != nil {
			return nil, fmt.Errorf("error scanning notification log row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification log rows: %w", err)
	}
	return entries, nil
}
