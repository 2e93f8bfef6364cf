// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// LogRepository is the notification log. Entries are appended, never updated.
type LogRepository interface {
	// FindSent returns entries with status sent for the user and category whose
	// sent_at is at or after since.
	FindSent(ctx context.Context, userID string, category Category, since time.Time) ([]*LogEntry, error)
	Append(ctx context.Context, entry *LogEntry) error
}
