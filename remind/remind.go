// Package remind schedules the donut reminder.
package remind

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reminder periodically fires a notify func, at most once per 24 hours.
type Reminder struct {
	notify func(ctx context.Context) error
	log    *zap.Logger

	now          func() time.Time
	lastNotified time.Time
}

// New constructs a *Reminder. notify should post the reminder and return
// an error when delivery failed; failed deliveries are retried on the
// next poll.
func New(notify func(ctx context.Context) error, log *zap.Logger) *Reminder {
	return &Reminder{
		notify: notify,
		log:    log,
		now:    time.Now,
	}
}

// Poll calls notify unless a notification already went out in the last
// 24 hours.
func (r *Reminder) Poll(ctx context.Context) error {
	now := r.now()
	if r.lastNotified.After(now.Add(-24 * time.Hour)) {
		return nil
	}

	if err := r.notify(ctx); err != nil {
		return err
	}
	r.lastNotified = now

	r.log.Info("donut reminder sent", zap.Time("at", now))

	return nil
}

// Run polls on the given interval until ctx is done.
func (r *Reminder) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Poll(ctx); err != nil {
				r.log.Error("donut reminder failed", zap.Error(err))
			}
		}
	}
}
