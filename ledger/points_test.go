package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPointsScore(t *testing.T) {
	ctx := context.Background()
	store := newMemBalances()
	points := NewPoints(store, zap.NewNop())

	t.Run("unknown user scores zero", func(t *testing.T) {
		score, err := points.Score(ctx, "U_NEVER_SEEN")
		require.NoError(t, err)
		assert.Equal(t, 0, score)
	})

	t.Run("apply then read", func(t *testing.T) {
		_, err := points.Apply(ctx, "U1", 3)
		require.NoError(t, err)

		score, err := points.Score(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, 3, score)
	})
}

func TestPointsApplyRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMemBalances()
	points := NewPoints(store, zap.NewNop())

	before, err := points.Score(ctx, "U1")
	require.NoError(t, err)

	_, err = points.Apply(ctx, "U1", 1)
	require.NoError(t, err)
	_, err = points.Apply(ctx, "U1", -1)
	require.NoError(t, err)

	after, err := points.Score(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPointsTopN(t *testing.T) {
	ctx := context.Background()
	store := newMemBalances()
	points := NewPoints(store, zap.NewNop())

	seed := map[string]int{"A": 10, "B": -2, "C": 5, "D": 10}
	for _, userID := range []string{"A", "B", "C", "D"} {
		_, err := points.Apply(ctx, userID, seed[userID])
		require.NoError(t, err)
	}

	t.Run("descending with ties ahead of lower scores", func(t *testing.T) {
		top, err := points.TopN(ctx, 3)
		require.NoError(t, err)
		require.Len(t, top, 3)

		// A and D tie at 10 in either relative order, then C. B is cut.
		assert.ElementsMatch(t, []string{"A", "D"}, []string{top[0].UserID, top[1].UserID})
		assert.Equal(t, "C", top[2].UserID)
	})

	t.Run("n larger than table returns everyone", func(t *testing.T) {
		top, err := points.TopN(ctx, 50)
		require.NoError(t, err)
		assert.Len(t, top, 4)
		assert.Equal(t, "B", top[3].UserID)
	})

	t.Run("rejects n below one without touching the store", func(t *testing.T) {
		scans := store.scanCalls
		_, err := points.TopN(ctx, 0)
		assert.ErrorIs(t, err, ErrInvalidCount)
		assert.Equal(t, scans, store.scanCalls)
	})
}

func TestPointsTopNPagesThroughFullScan(t *testing.T) {
	ctx := context.Background()
	store := newMemBalances()
	points := NewPoints(store, zap.NewNop())

	total := scanPageSize*2 + 7
	for i := 0; i < total; i++ {
		_, err := points.Apply(ctx, fmt.Sprintf("U%03d", i), i)
		require.NoError(t, err)
	}

	top, err := points.TopN(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, fmt.Sprintf("U%03d", total-1), top[0].UserID)
	assert.Equal(t, 3, store.scanCalls)
}
