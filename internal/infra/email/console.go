package email

import (
	"context"

	"inactivity_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// ConsoleDispatcher only logs messages. Used for local runs.
type ConsoleDispatcher struct {
	logger *logrus.Entry
}

var _ notification.Dispatcher = (*ConsoleDispatcher)(nil)

func NewConsoleDispatcher(logger *logrus.Entry) *ConsoleDispatcher {
	return &ConsoleDispatcher{logger: logger.WithField("provider", "console")}
}

func (d *ConsoleDispatcher) Send(ctx context.Context, msg notification.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.logger.WithFields(logrus.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info("Email (console)")
	d.logger.Debug(msg.Text)
	return nil
}
