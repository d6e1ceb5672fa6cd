// Package ledger holds the point and donut bookkeeping rules: how point
// deltas land on per-user balances and how donut infractions are created,
// counted, ordered and repaid.
package ledger

import (
	"context"
	"time"
)

// Balance is one user's cumulative point total.
type Balance struct {
	UserID string
	Score  int
}

// Counts pairs a user's unrepaid infractions with their lifetime total.
type Counts struct {
	Outstanding int
	Total       int
}

// Infraction is a single recorded instance of a user owing donuts.
// A zero DateRepaid means the infraction is still outstanding.
type Infraction struct {
	ID               string
	UserID           string
	DateOfInfraction time.Time
	DateRepaid       time.Time
}

// Outstanding reports whether the infraction has not been repaid yet.
func (i Infraction) Outstanding() bool {
	return i.DateRepaid.IsZero()
}

// DonutUser is one entry of the donut rotation: a user together with
// their earliest outstanding infraction date.
type DonutUser struct {
	UserID   string
	Earliest time.Time
}

// NextDonutUser is the head of the rotation with the user's counts attached.
type NextDonutUser struct {
	DonutUser
	Counts Counts
}

// BalanceStore persists point balances, keyed by user.
type BalanceStore interface {
	// Points returns the stored score, 0 when the user has no record.
	Points(ctx context.Context, userID string) (int, error)
	// AddPoints applies delta as a single atomic create-or-increment
	// and returns the new score.
	AddPoints(ctx context.Context, userID string, delta int) (int, error)
	// Balances returns one page of balances. An empty next cursor means
	// the scan is complete.
	Balances(ctx context.Context, cursor string, limit int) ([]Balance, string, error)
}

// InfractionStore persists donut infractions.
type InfractionStore interface {
	InfractionsByUser(ctx context.Context, userID string) ([]Infraction, error)
	PutInfraction(ctx context.Context, inf Infraction) error
	// MarkRepaid stamps the infraction's repayment date. Infractions are
	// repaid at most once; the store rejects a second stamp.
	MarkRepaid(ctx context.Context, id string, repaidAt time.Time) error
	// OutstandingInfractions returns one page of unrepaid infractions.
	// An empty next cursor means the scan is complete.
	OutstandingInfractions(ctx context.Context, cursor string, limit int) ([]Infraction, string, error)
}
