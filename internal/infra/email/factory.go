package email

import (
	"errors"
	"fmt"

	"inactivity_notifier/internal/domain/notification"
	"inactivity_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
)

var ErrUnknownProvider = errors.New("unknown email provider")

// NewDispatcher builds the configured provider behind the rate limiter.
func NewDispatcher(cfg *config.AppConfig, logger *logrus.Entry) (notification.Dispatcher, error) {
	var (
		d   notification.Dispatcher
		err error
	)
	switch cfg.EmailProvider {
	case config.EmailProviderResend:
		d = NewResendDispatcher(cfg.ResendAPIKey, cfg.EmailFrom, logger)
	case config.EmailProviderSendgrid:
		d, err = NewSendgridDispatcher(cfg.SendgridAPIKey, cfg.EmailFrom, logger)
		if err != nil {
			return nil, err
		}
	case config.EmailProviderConsole:
		d = NewConsoleDispatcher(logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.EmailProvider)
	}
	return NewThrottledDispatcher(d, cfg.EmailRatePerSecond), nil
}
