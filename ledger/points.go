package ledger

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
)

// ErrInvalidCount is returned by TopN when asked for fewer than one user.
// It is a user input error, not a store failure.
var ErrInvalidCount = errors.New("invalid number passed")

// scanPageSize bounds a single store round trip, not the whole scan.
const scanPageSize = 100

// Points applies point deltas to balances and ranks them.
type Points struct {
	store BalanceStore
	log   *zap.Logger
}

// NewPoints constructs a *Points.
func NewPoints(store BalanceStore, log *zap.Logger) *Points {
	return &Points{store: store, log: log}
}

// Score returns the user's current total, 0 for users never seen before.
func (p *Points) Score(ctx context.Context, userID string) (int, error) {
	score, err := p.store.Points(ctx, userID)
	if err != nil {
		return 0, err
	}

	p.log.Info("user points read",
		zap.String("userID", userID),
		zap.Int("score", score))

	return score, nil
}

// Apply adds delta to the user's balance and returns the new score. The
// write is a single atomic upsert; callers never branch on existence.
func (p *Points) Apply(ctx context.Context, userID string, delta int) (int, error) {
	score, err := p.store.AddPoints(ctx, userID, delta)
	if err != nil {
		return 0, err
	}

	p.log.Info("changed user points",
		zap.String("userID", userID),
		zap.Int("delta", delta),
		zap.Int("score", score))

	return score, nil
}

// TopN scans every balance and returns the n highest, descending. Ties
// keep the order the store returned them in.
func (p *Points) TopN(ctx context.Context, n int) ([]Balance, error) {
	if n < 1 {
		return nil, ErrInvalidCount
	}

	var users []Balance
	cursor := ""
	for {
		page, next, err := p.store.Balances(ctx, cursor, scanPageSize)
		if err != nil {
			return nil, err
		}
		users = append(users, page...)
		if next == "" {
			break
		}
		cursor = next
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Score > users[j].Score
	})

	p.log.Info("scanned and ranked all balances",
		zap.Int("topN", n),
		zap.Int("userCount", len(users)))

	if len(users) > n {
		users = users[:n]
	}

	return users, nil
}
