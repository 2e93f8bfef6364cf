// Package redisdb is the Redis backend for the notification log.
package redisdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"inactivity_notifier/internal/domain/notification"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "email_logs"

// Entries older than this are dropped with the key. Must outlive the dedup window.
const DefaultRetention = 30 * 24 * time.Hour

type record struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Category      string `json:"email_type"`
	SentAt        int64  `json:"sent_at"` // unix millis
	Status        string `json:"status"`
	FailureDetail string `json:"error_message,omitempty"`
}

// NotificationLog keeps one sorted set per user and category, scored by send time.
type NotificationLog struct {
	rdb       redis.UniversalClient
	retention time.Duration
}

var _ notification.LogRepository = (*NotificationLog)(nil)

func NewNotificationLog(rdb redis.UniversalClient, retention time.Duration) *NotificationLog {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &NotificationLog{rdb: rdb, retention: retention}
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

func logKey(userID string, category notification.Category) string {
	return keyPrefix + ":" + userID + ":" + string(category)
}

func (l *NotificationLog) Append(ctx context.Context, e *notification.LogEntry) error {
	rec := record{
		ID:       e.ID,
		UserID:   e.UserID,
		Category: string(e.Category),
		SentAt:   e.SentAt.UnixMilli(),
		Status:   string(e.Status),
	}
	if e.FailureDetail.Valid {
		rec.FailureDetail = e.FailureDetail.String
	}
	member, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode log entry %s: %w", e.ID, err)
	}

	key := logKey(e.UserID, e.Category)
	_, err = l.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, key, redis.Z{Score: float64(rec.SentAt), Member: member})
		p.Expire(ctx, key, l.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append log entry for user %s: %w", e.UserID, err)
	}
	return nil
}

func (l *NotificationLog) FindSent(ctx context.Context, userID string, category notification.Category, since time.Time) ([]*notification.LogEntry, error) {
	members, err := l.rdb.ZRangeByScore(ctx, logKey(userID, category), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read log for user %s: %w", userID, err)
	}

	var entries []*notification.LogEntry
	for _, m := range members {
		var rec record
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode log entry for user %s: %w", userID, err)
		}
		if notification.Status(rec.Status) != notification.StatusSent {
			continue
		}
		entries = append(entries, &notification.LogEntry{
			ID:            rec.ID,
			UserID:        rec.UserID,
			Category:      notification.Category(rec.Category),
			SentAt:        time.UnixMilli(rec.SentAt).UTC(),
			Status:        notification.Status(rec.Status),
			FailureDetail: sql.NullString{String: rec.FailureDetail, Valid: rec.FailureDetail != ""},
		})
	}
	return entries, nil
}
