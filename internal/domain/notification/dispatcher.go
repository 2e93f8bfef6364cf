package notification

import "context"

// Email is a rendered message addressed to one recipient.
type Email struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Dispatcher performs best-effort delivery. A non-nil error means the message was not accepted.
type Dispatcher interface {
	Send(ctx context.Context, msg Email) error
}
