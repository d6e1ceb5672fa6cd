package remind

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestPoll(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies at most once per day", func(t *testing.T) {
		calls := 0
		r := New(func(context.Context) error {
			calls++
			return nil
		}, zap.NewNop())

		now := time.Date(2020, 1, 15, 9, 0, 0, 0, time.UTC)
		r.now = func() time.Time { return now }

		for i := 0; i < 5; i++ {
			if err := r.Poll(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			now = now.Add(time.Hour)
		}
		if calls != 1 {
			t.Errorf("expected 1 notification, got %d", calls)
		}

		// A day later it fires again.
		now = now.Add(24 * time.Hour)
		if err := r.Poll(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 notifications, got %d", calls)
		}
	})

	t.Run("failed delivery retries on the next poll", func(t *testing.T) {
		calls := 0
		r := New(func(context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("slack is down")
			}
			return nil
		}, zap.NewNop())

		if err := r.Poll(ctx); err == nil {
			t.Fatal("expected an error from the first poll")
		}
		if err := r.Poll(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 2 {
			t.Errorf("expected a retry, got %d calls", calls)
		}
	})
}
