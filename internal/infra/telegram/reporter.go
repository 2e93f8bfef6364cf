package telegram

import (
	domaintelegram "inactivity_notifier/internal/domain/telegram"
	"inactivity_notifier/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
)

// CycleReporter sends a summary of every finished cycle to the admin chat.
type CycleReporter struct {
	client  domaintelegram.Client
	adminID int64
	logger  *logrus.Entry
}

func NewCycleReporter(client domaintelegram.Client, adminID int64, logger *logrus.Entry) *CycleReporter {
	return &CycleReporter{client: client, adminID: adminID, logger: logger.WithField("component", "cycle_reporter")}
}

// Observe matches scheduler.Observer.
func (r *CycleReporter) Observe(run scheduler.Run) {
	text := formatReport("Inactivity check finished ("+string(run.Trigger)+").", run.Report)
	if run.Err != nil {
		text = "Inactivity check (" + string(run.Trigger) + ") failed: " + run.Err.Error()
	}
	if err := r.client.SendMessage(r.adminID, text, nil); err != nil {
		r.logger.WithError(err).WithField("admin_id", r.adminID).Error("Failed to send cycle report to admin")
	}
}
