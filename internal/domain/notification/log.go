// internal/domain/notification/log.go
package notification

import (
	"database/sql"
	"fmt"
	"time"
)

// Status is the outcome recorded for a single delivery attempt.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Category tags the kind of notification, e.g. "inactivity_3d".
// Corresponds to the email_type column of the email_logs table.
type Category string

// InactivityCategory returns the category used for the given threshold in days.
func InactivityCategory(days int) Category {
	return Category(fmt.Sprintf("inactivity_%dd", days))
}

// LogEntry is one append-only record of a notification attempt.
type LogEntry struct {
	ID            string
	UserID        string
	Category      Category
	SentAt        time.Time
	Status        Status
	FailureDetail sql.NullString // only set when Status is StatusFailed
}

// NewSentEntry builds the log entry for a successful dispatch.
func NewSentEntry(id, userID string, category Category, at time.Time) *LogEntry {
	return &LogEntry{ID: id, UserID: userID, Category: category, SentAt: at, Status: StatusSent}
}

// NewFailedEntry builds the log entry for a failed dispatch.
func NewFailedEntry(id, userID string, category Category, at time.Time, cause error) *LogEntry {
	e := &LogEntry{ID: id, UserID: userID, Category: category, SentAt: at, Status: StatusFailed}
	if cause != nil {
		e.FailureDetail = sql.NullString{String: cause.Error(), Valid: true}
	}
	return e
}
