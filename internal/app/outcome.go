package app

import (
	"time"

	"inactivity_notifier/internal/domain/notification"
)

// OutcomeKind tags the result of evaluating one user or one (user, threshold) pair.
type OutcomeKind int

const (
	OutcomeNotDue OutcomeKind = iota // has activity but matched no threshold
	OutcomeSent
	OutcomeFailed
	OutcomeSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSent:
		return "sent"
	case OutcomeFailed:
		return "failed"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "not_due"
	}
}

// SkipReason explains an OutcomeSkipped.
type SkipReason string

const (
	SkipNoActivity      SkipReason = "no_activity"
	SkipAlreadyNotified SkipReason = "already_notified"
)

// Outcome is one entry in the per-cycle reduction.
type Outcome struct {
	Kind     OutcomeKind
	UserID   string
	Category notification.Category
	Reason   SkipReason // OutcomeSkipped only
	Err      error      // OutcomeFailed only
}

func Sent(userID string, category notification.Category) Outcome {
	return Outcome{Kind: OutcomeSent, UserID: userID, Category: category}
}

func Failed(userID string, category notification.Category, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, UserID: userID, Category: category, Err: err}
}

func Skipped(userID string, category notification.Category, reason SkipReason) Outcome {
	return Outcome{Kind: OutcomeSkipped, UserID: userID, Category: category, Reason: reason}
}

func NotDue(userID string) Outcome {
	return Outcome{Kind: OutcomeNotDue, UserID: userID}
}

// CycleReport is the summary of one campaign cycle.
type CycleReport struct {
	UsersScanned         int       `json:"usersScanned"`
	NotificationsSent    int       `json:"notificationsSent"`
	NotificationsFailed  int       `json:"notificationsFailed"`
	NotificationsSkipped int       `json:"notificationsSkipped"`
	UsersNotDue          int       `json:"usersNotDue"`
	Cancelled            bool      `json:"cancelled"`
	StartedAt            time.Time `json:"startedAt"`
	FinishedAt           time.Time `json:"finishedAt"`
}

// Reduce folds outcomes into the counters of a report. usersScanned is supplied by
// the caller because a user can produce more than one outcome.
func Reduce(usersScanned int, outcomes []Outcome) CycleReport {
	r := CycleReport{UsersScanned: usersScanned}
	for _, o := range outcomes {
		switch o.Kind {
		case OutcomeSent:
			r.NotificationsSent++
		case OutcomeFailed:
			r.NotificationsFailed++
		case OutcomeSkipped:
			r.NotificationsSkipped++
		case OutcomeNotDue:
			r.UsersNotDue++
		}
	}
	return r
}

// Duration is the wall time the cycle took.
func (r CycleReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
