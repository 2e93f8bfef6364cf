package app

import (
	"context"
	"fmt"
	"time"

	"inactivity_notifier/internal/domain/notification"
)

// DedupGuard suppresses a second send of the same category to the same user
// inside a trailing window. The check is not transactional.
type DedupGuard struct {
	logRepo notification.LogRepository
	window  time.Duration
}

func NewDedupGuard(logRepo notification.LogRepository, window time.Duration) *DedupGuard {
	return &DedupGuard{logRepo: logRepo, window: window}
}

// Window is the trailing period in which a sent entry suppresses another dispatch.
func (g *DedupGuard) Window() time.Duration {
	return g.window
}

// AlreadyNotified reports whether a sent entry exists for the pair within the window ending at now.
// Failed attempts never count.
func (g *DedupGuard) AlreadyNotified(ctx context.Context, userID string, category notification.Category, now time.Time) (bool, error) {
	since := now.Add(-g.window)
	entries, err := g.logRepo.FindSent(ctx, userID, category, since)
	if err != nil {
		return false, fmt.Errorf("failed to query notification log for user %s, category %s: %w", userID, category, err)
	}
	for _, e := range entries {
		if e.Status == notification.StatusSent && !e.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}
