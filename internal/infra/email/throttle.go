package email

import (
	"context"
	"fmt"

	"inactivity_notifier/internal/domain/notification"

	"golang.org/x/time/rate"
)

// ThrottledDispatcher spaces out calls to the wrapped provider.
type ThrottledDispatcher struct {
	next    notification.Dispatcher
	limiter *rate.Limiter
}

var _ notification.Dispatcher = (*ThrottledDispatcher)(nil)

func NewThrottledDispatcher(next notification.Dispatcher, perSecond float64) *ThrottledDispatcher {
	return &ThrottledDispatcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Send waits for a token; a context that expires while waiting is a send failure.
func (d *ThrottledDispatcher) Send(ctx context.Context, msg notification.Email) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return d.next.Send(ctx, msg)
}
