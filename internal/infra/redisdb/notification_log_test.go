package redisdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"inactivity_notifier/internal/domain/notification"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) (*NotificationLog, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewNotificationLog(rdb, 0), mr
}

func TestNotificationLogFindSent(t *testing.T) {
	log, _ := newTestLog(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	cat := notification.InactivityCategory(3)

	require.NoError(t, log.Append(ctx, notification.NewSentEntry("old", "u1", cat, now.Add(-30*time.Hour))))
	require.NoError(t, log.Append(ctx, notification.NewSentEntry("recent", "u1", cat, now.Add(-2*time.Hour))))
	require.NoError(t, log.Append(ctx, notification.NewFailedEntry("failed", "u1", cat, now.Add(-1*time.Hour), errors.New("boom"))))
	require.NoError(t, log.Append(ctx, notification.NewSentEntry("other-user", "u2", cat, now.Add(-1*time.Hour))))
	require.NoError(t, log.Append(ctx, notification.NewSentEntry("other-cat", "u1", notification.InactivityCategory(7), now.Add(-1*time.Hour))))

	entries, err := log.FindSent(ctx, "u1", cat, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].ID)
	assert.Equal(t, notification.StatusSent, entries[0].Status)
	assert.True(t, entries[0].SentAt.Equal(now.Add(-2*time.Hour)))

	entries, err = log.FindSent(ctx, "u3", cat, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNotificationLogSetsRetention(t *testing.T) {
	log, mr := newTestLog(t)
	cat := notification.InactivityCategory(14)

	require.NoError(t, log.Append(context.Background(), notification.NewSentEntry("e1", "u1", cat, time.Now())))
	assert.Equal(t, DefaultRetention, mr.TTL(logKey("u1", cat)))
}

func TestNotificationLogUnavailable(t *testing.T) {
	log, mr := newTestLog(t)
	mr.Close()

	_, err := log.FindSent(context.Background(), "u1", notification.InactivityCategory(3), time.Now())
	assert.Error(t, err)
	err = log.Append(context.Background(), notification.NewSentEntry("e1", "u1", notification.InactivityCategory(3), time.Now()))
	assert.Error(t, err)
}
