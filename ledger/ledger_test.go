package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"
)

// memBalances is an in-memory BalanceStore. Scans page in insertion order
// with a numeric cursor.
type memBalances struct {
	order      []string
	score      map[string]int
	addCalls   int
	scanCalls  int
	pointCalls int
}

func newMemBalances() *memBalances {
	return &memBalances{score: map[string]int{}}
}

func (m *memBalances) Points(_ context.Context, userID string) (int, error) {
	m.pointCalls++
	return m.score[userID], nil
}

func (m *memBalances) AddPoints(_ context.Context, userID string, delta int) (int, error) {
	m.addCalls++
	if _, ok := m.score[userID]; !ok {
		m.order = append(m.order, userID)
	}
	m.score[userID] += delta
	return m.score[userID], nil
}

func (m *memBalances) Balances(_ context.Context, cursor string, limit int) ([]Balance, string, error) {
	m.scanCalls++
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", err
		}
	}
	end := start + limit
	if end > len(m.order) {
		end = len(m.order)
	}
	page := make([]Balance, 0, end-start)
	for _, userID := range m.order[start:end] {
		page = append(page, Balance{UserID: userID, Score: m.score[userID]})
	}
	next := ""
	if end < len(m.order) {
		next = strconv.Itoa(end)
	}
	return page, next, nil
}

// memInfractions is an in-memory InfractionStore.
type memInfractions struct {
	items []Infraction
}

func (m *memInfractions) InfractionsByUser(_ context.Context, userID string) ([]Infraction, error) {
	var out []Infraction
	for _, inf := range m.items {
		if inf.UserID == userID {
			out = append(out, inf)
		}
	}
	return out, nil
}

func (m *memInfractions) PutInfraction(_ context.Context, inf Infraction) error {
	m.items = append(m.items, inf)
	return nil
}

func (m *memInfractions) MarkRepaid(_ context.Context, id string, repaidAt time.Time) error {
	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		if !m.items[i].DateRepaid.IsZero() {
			return errors.New("infraction already repaid")
		}
		m.items[i].DateRepaid = repaidAt
		return nil
	}
	return errors.New("infraction not found")
}

func (m *memInfractions) OutstandingInfractions(_ context.Context, cursor string, limit int) ([]Infraction, string, error) {
	var outstanding []Infraction
	for _, inf := range m.items {
		if inf.Outstanding() {
			outstanding = append(outstanding, inf)
		}
	}
	start := 0
	if cursor != "" {
		var err error
		start, err = strconv.Atoi(cursor)
		if err != nil {
			return nil, "", err
		}
	}
	end := start + limit
	if end > len(outstanding) {
		end = len(outstanding)
	}
	next := ""
	if end < len(outstanding) {
		next = strconv.Itoa(end)
	}
	return outstanding[start:end], next, nil
}
