// internal/app/campaign.go
package app

import (
	"context"
	"fmt"
	"time"

	"inactivity_notifier/internal/domain/activity"
	"inactivity_notifier/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultListTimeout = 60 * time.Second
	defaultCallTimeout = 15 * time.Second
)

// CampaignRunner defines the operation the scheduler and manual triggers invoke.
type CampaignRunner interface {
	RunCycle(ctx context.Context) (CycleReport, error)
}

// CampaignOptions tunes timeouts. Zero values fall back to defaults.
type CampaignOptions struct {
	ListTimeout time.Duration // bound on the full student scan
	CallTimeout time.Duration // bound on each log read, log write and dispatch
}

// InactivityCampaign scans students and sends inactivity reminders.
type InactivityCampaign struct {
	activityRepo activity.Repository
	logRepo      notification.LogRepository
	guard        *DedupGuard
	renderer     notification.Renderer
	dispatcher   notification.Dispatcher
	thresholds   ThresholdConfig
	opts         CampaignOptions
	logger       *logrus.Entry

	now   func() time.Time
	newID func() string
}

func NewInactivityCampaign(
	ar activity.Repository,
	lr notification.LogRepository,
	guard *DedupGuard,
	renderer notification.Renderer,
	dispatcher notification.Dispatcher,
	thresholds ThresholdConfig,
	opts CampaignOptions,
	logger *logrus.Entry,
) *InactivityCampaign {
	if opts.ListTimeout <= 0 {
		opts.ListTimeout = defaultListTimeout
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &InactivityCampaign{
		activityRepo: ar,
		logRepo:      lr,
		guard:        guard,
		renderer:     renderer,
		dispatcher:   dispatcher,
		thresholds:   thresholds,
		opts:         opts,
		logger:       logger.WithField("component", "campaign"),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// RunCycle performs one full scan. Only a failure to list students returns an error;
// per-user problems end up in the report. Cancellation is honoured between users.
func (c *InactivityCampaign) RunCycle(ctx context.Context) (CycleReport, error) {
	startedAt := c.now()
	c.logger.WithFields(logrus.Fields{
		"thresholds":   c.thresholds.String(),
		"dedup_window": c.guard.Window(),
	}).Info("Checking for inactive students")

	listCtx, cancel := context.WithTimeout(ctx, c.opts.ListTimeout)
	students, err := c.activityRepo.ListByRole(listCtx, activity.RoleStudent)
	cancel()
	if err != nil {
		c.logger.WithError(err).Error("Failed to list students, aborting cycle")
		return CycleReport{StartedAt: startedAt, FinishedAt: c.now()}, fmt.Errorf("failed to list students: %w", err)
	}
	if len(students) == 0 {
		c.logger.Info("No students found")
	}

	var (
		outcomes  []Outcome
		scanned   int
		cancelled bool
	)
	for _, u := range students {
		if ctx.Err() != nil {
			cancelled = true
			c.logger.WithField("remaining", len(students)-scanned).Warn("Cycle cancelled, stopping before next user")
			break
		}
		scanned++
		// A started user is finished even if ctx is cancelled meanwhile; every call is still bounded.
		outcomes = append(outcomes, c.processUser(context.WithoutCancel(ctx), u)...)
	}

	report := Reduce(scanned, outcomes)
	report.Cancelled = cancelled
	report.StartedAt = startedAt
	report.FinishedAt = c.now()

	c.logger.WithFields(logrus.Fields{
		"users_scanned": report.UsersScanned,
		"sent":          report.NotificationsSent,
		"failed":        report.NotificationsFailed,
		"skipped":       report.NotificationsSkipped,
		"not_due":       report.UsersNotDue,
		"cancelled":     report.Cancelled,
		"duration":      report.Duration().Round(time.Millisecond),
	}).Info("Inactivity check completed")
	return report, nil
}

// processUser evaluates one user. It never returns an error; panics are converted to a failure.
func (c *InactivityCampaign) processUser(ctx context.Context, u *activity.User) (outcomes []Outcome) {
	logCtx := c.logger.WithField("user_id", u.ID)

	defer func() {
		if r := recover(); r != nil {
			logCtx.WithField("panic", r).Error("Recovered while processing user")
			outcomes = append(outcomes, Failed(u.ID, "", fmt.Errorf("panic: %v", r)))
		}
	}()

	if !u.HasActivity() {
		logCtx.Debug("No last activity recorded, skipping")
		return []Outcome{Skipped(u.ID, "", SkipNoActivity)}
	}

	now := c.now()
	elapsed := ElapsedDays(now, u.LastActivity.Time)
	matched := c.thresholds.Match(elapsed)
	if len(matched) == 0 {
		return []Outcome{NotDue(u.ID)}
	}

	for _, t := range matched {
		outcomes = append(outcomes, c.notify(ctx, logCtx.WithFields(logrus.Fields{
			"category":     t.Category(),
			"elapsed_days": elapsed,
		}), u, t, now))
	}
	return outcomes
}

func (c *InactivityCampaign) notify(ctx context.Context, logCtx *logrus.Entry, u *activity.User, t Threshold, now time.Time) Outcome {
	category := t.Category()

	guardCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	already, err := c.guard.AlreadyNotified(guardCtx, u.ID, category, now)
	cancel()
	if err != nil {
		logCtx.WithError(err).Error("Dedup check failed, not dispatching")
		return Failed(u.ID, category, err)
	}
	if already {
		logCtx.Info("Reminder already sent within window, skipping")
		return Skipped(u.ID, category, SkipAlreadyNotified)
	}

	content, err := c.renderer.Render(t.TemplateID, notification.Variables{Name: u.DisplayName(), DaysInactive: t.Days})
	if err != nil {
		logCtx.WithError(err).Error("Failed to render reminder")
		return Failed(u.ID, category, fmt.Errorf("failed to render %s: %w", t.TemplateID, err))
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	sendErr := c.dispatcher.Send(sendCtx, notification.Email{
		To:      u.Email,
		Subject: content.Subject,
		HTML:    content.HTML,
		Text:    content.Text,
	})
	cancel()

	var entry *notification.LogEntry
	if sendErr != nil {
		entry = notification.NewFailedEntry(c.newID(), u.ID, category, c.now(), sendErr)
	} else {
		entry = notification.NewSentEntry(c.newID(), u.ID, category, c.now())
	}

	appendCtx, cancel := context.WithTimeout(ctx, c.opts.CallTimeout)
	if err := c.logRepo.Append(appendCtx, entry); err != nil {
		logCtx.WithError(err).WithField("status", entry.Status).Error("Failed to record notification attempt")
	}
	cancel()

	if sendErr != nil {
		logCtx.WithError(sendErr).Warn("Failed to send inactivity reminder")
		return Failed(u.ID, category, sendErr)
	}
	logCtx.Info("Inactivity reminder sent")
	return Sent(u.ID, category)
}
