// Package email holds the outbound email providers.
package email

import (
	"context"
	"fmt"

	"inactivity_notifier/internal/domain/notification"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// resendEmails is the part of the Resend client used here.
type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendDispatcher struct {
	emails resendEmails
	from   string
	logger *logrus.Entry
}

var _ notification.Dispatcher = (*ResendDispatcher)(nil)

func NewResendDispatcher(apiKey, from string, logger *logrus.Entry) *ResendDispatcher {
	return &ResendDispatcher{
		emails: resend.NewClient(apiKey).Emails,
		from:   from,
		logger: logger.WithField("provider", "resend"),
	}
}

func (d *ResendDispatcher) Send(ctx context.Context, msg notification.Email) error {
	res, err := d.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    d.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	d.logger.WithField("message_id", res.Id).Debug("Email accepted")
	return nil
}
