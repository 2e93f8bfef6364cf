package activity

import (
	"database/sql"
	"time"
)

// Role is the account category stored alongside each profile.
type Role string

const (
	RoleStudent Role = "student"
)

// User is a read-only snapshot of one notifiable account.
// LastActivity is invalid when the user never logged in or the stored value could not be parsed.
type User struct {
	ID           string
	Email        string
	FullName     string
	Role         Role
	LastActivity sql.NullTime
}

// HasActivity reports whether the user has a usable last-activity timestamp.
func (u *User) HasActivity() bool {
	return u.LastActivity.Valid
}

// DisplayName falls back to the email address for profiles without a name.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// ParseActivityTimestamp parses a stored last-login value. The boolean is false for
// empty or malformed input so callers can treat the user as never active.
func ParseActivityTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}
