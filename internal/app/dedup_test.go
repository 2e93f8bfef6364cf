package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"inactivity_notifier/internal/domain/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupGuardAlreadyNotified(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	cat := notification.InactivityCategory(3)

	tests := []struct {
		name    string
		entries []*notification.LogEntry
		want    bool
	}{
		{name: "empty log"},
		{
			name:    "sent two hours ago",
			entries: []*notification.LogEntry{notification.NewSentEntry("1", "u1", cat, now.Add(-2*time.Hour))},
			want:    true,
		},
		{
			name:    "sent exactly at window start",
			entries: []*notification.LogEntry{notification.NewSentEntry("1", "u1", cat, now.Add(-24*time.Hour))},
			want:    true,
		},
		{
			name:    "sent thirty hours ago",
			entries: []*notification.LogEntry{notification.NewSentEntry("1", "u1", cat, now.Add(-30*time.Hour))},
		},
		{
			name:    "failed one hour ago does not count",
			entries: []*notification.LogEntry{notification.NewFailedEntry("1", "u1", cat, now.Add(-time.Hour), errors.New("boom"))},
		},
		{
			name:    "other category",
			entries: []*notification.LogEntry{notification.NewSentEntry("1", "u1", notification.InactivityCategory(7), now.Add(-time.Hour))},
		},
		{
			name:    "other user",
			entries: []*notification.LogEntry{notification.NewSentEntry("1", "u2", cat, now.Add(-time.Hour))},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := NewDedupGuard(&memLog{entries: tt.entries}, 24*time.Hour)
			got, err := guard.AlreadyNotified(context.Background(), "u1", cat, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupGuardLogError(t *testing.T) {
	guard := NewDedupGuard(&memLog{findErr: errors.New("connection reset")}, 24*time.Hour)
	assert.Equal(t, 24*time.Hour, guard.Window())
	_, err := guard.AlreadyNotified(context.Background(), "u1", "inactivity_3d", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
