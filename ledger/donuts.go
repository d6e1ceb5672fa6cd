package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Donuts owns the infraction lifecycle and the rotation order.
type Donuts struct {
	store InfractionStore
	log   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewDonuts constructs a *Donuts.
func NewDonuts(store InfractionStore, log *zap.Logger) *Donuts {
	return &Donuts{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Record creates a new outstanding infraction for the user and returns
// their updated counts.
func (d *Donuts) Record(ctx context.Context, userID string) (Counts, error) {
	inf := Infraction{
		ID:               d.newID(),
		UserID:           userID,
		DateOfInfraction: d.now(),
	}
	if err := d.store.PutInfraction(ctx, inf); err != nil {
		return Counts{}, err
	}

	d.log.Info("user added to donut history",
		zap.String("userID", userID),
		zap.String("infractionID", inf.ID))

	return d.CountsFor(ctx, userID)
}

// RepayEarliest marks the user's oldest outstanding infraction as repaid.
// Repayment is strictly FIFO by infraction date. With nothing outstanding
// it is a no-op; with no history at all it returns zero counts.
func (d *Donuts) RepayEarliest(ctx context.Context, userID string) (Counts, error) {
	history, err := d.store.InfractionsByUser(ctx, userID)
	if err != nil {
		return Counts{}, err
	}

	outstanding := make([]Infraction, 0, len(history))
	for _, inf := range history {
		if inf.Outstanding() {
			outstanding = append(outstanding, inf)
		}
	}
	sort.Slice(outstanding, func(i, j int) bool {
		return outstanding[i].DateOfInfraction.Before(outstanding[j].DateOfInfraction)
	})

	if len(outstanding) == 0 {
		return Counts{Outstanding: 0, Total: len(history)}, nil
	}

	earliest := outstanding[0]
	if err := d.store.MarkRepaid(ctx, earliest.ID, d.now()); err != nil {
		return Counts{}, err
	}

	counts := Counts{Outstanding: len(outstanding) - 1, Total: len(history)}

	d.log.Info("marked earliest infraction repaid",
		zap.String("userID", userID),
		zap.String("infractionID", earliest.ID),
		zap.Int("outstanding", counts.Outstanding),
		zap.Int("total", counts.Total))

	return counts, nil
}

// Outstanding returns the donut rotation: one entry per user with at least
// one unrepaid infraction, dated by their earliest one, ascending. Fully
// repaid users are excluded.
func (d *Donuts) Outstanding(ctx context.Context) ([]DonutUser, error) {
	earliest := map[string]time.Time{}
	cursor := ""
	for {
		page, next, err := d.store.OutstandingInfractions(ctx, cursor, scanPageSize)
		if err != nil {
			return nil, err
		}
		for _, inf := range page {
			if at, ok := earliest[inf.UserID]; !ok || inf.DateOfInfraction.Before(at) {
				earliest[inf.UserID] = inf.DateOfInfraction
			}
		}
		if next == "" {
			break
		}
		cursor = next
	}

	users := make([]DonutUser, 0, len(earliest))
	for userID, at := range earliest {
		users = append(users, DonutUser{UserID: userID, Earliest: at})
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Earliest.Before(users[j].Earliest)
	})

	d.log.Info("retrieved donut rotation", zap.Int("userCount", len(users)))

	return users, nil
}

// NextDue returns the head of the rotation with the user's counts
// attached, or nil when no one owes donuts.
func (d *Donuts) NextDue(ctx context.Context) (*NextDonutUser, error) {
	rotation, err := d.Outstanding(ctx)
	if err != nil {
		return nil, err
	}
	if len(rotation) == 0 {
		return nil, nil
	}

	next := &NextDonutUser{DonutUser: rotation[0]}
	next.Counts, err = d.CountsFor(ctx, next.UserID)
	if err != nil {
		return nil, err
	}

	d.log.Info("retrieved next user for donuts",
		zap.String("userID", next.UserID),
		zap.Time("earliest", next.Earliest))

	return next, nil
}

// CountsFor recomputes the user's outstanding and total infraction counts.
func (d *Donuts) CountsFor(ctx context.Context, userID string) (Counts, error) {
	history, err := d.store.InfractionsByUser(ctx, userID)
	if err != nil {
		return Counts{}, err
	}

	var counts Counts
	for _, inf := range history {
		if inf.Outstanding() {
			counts.Outstanding++
		}
		counts.Total++
	}

	return counts, nil
}
