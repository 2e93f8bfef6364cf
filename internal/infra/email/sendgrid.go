package email

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"

	"inactivity_notifier/internal/domain/notification"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridDispatcher struct {
	key    string
	host   string
	from   *sgmail.Email
	logger *logrus.Entry
}

var _ notification.Dispatcher = (*SendgridDispatcher)(nil)

func NewSendgridDispatcher(apiKey, from string, logger *logrus.Entry) (*SendgridDispatcher, error) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	return &SendgridDispatcher{
		key:    apiKey,
		host:   sendgridHost,
		from:   sgmail.NewEmail(addr.Name, addr.Address),
		logger: logger.WithField("provider", "sendgrid"),
	}, nil
}

func (d *SendgridDispatcher) prepare(msg notification.Email) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(d.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Text),
		sgmail.NewContent("text/html", msg.HTML),
	)
	return m
}

func (d *SendgridDispatcher) Send(ctx context.Context, msg notification.Email) error {
	req := sendgrid.GetRequest(d.key, sendgridEndpoint, d.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(d.prepare(msg))

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	d.logger.WithField("status", res.StatusCode).Debug("Email accepted")
	return nil
}
