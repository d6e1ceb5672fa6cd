// Package store persists the ledger in Google Cloud Datastore: one kind
// for point balances keyed by user, one for donut infractions keyed by id.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/aswnn/i11bot/ledger"
)

// Kind names match the tables the bot has always used.
const (
	DefaultPointKind = "UserPointTracker"
	DefaultDonutKind = "DonutHistory"
)

type pointEntity struct {
	UserID string `datastore:"userID"`
	Points int    `datastore:"points"`
}

// The infraction id lives in the entity key. A zero dateRepaid marks the
// infraction outstanding and keeps it filterable by equality.
type donutEntity struct {
	UserID           string    `datastore:"userID"`
	DateOfInfraction time.Time `datastore:"dateOfInfraction"`
	DateRepaid       time.Time `datastore:"dateRepaid"`
}

// Datastore implements the ledger stores on a Datastore client.
type Datastore struct {
	ds  *datastore.Client
	log *zap.Logger

	pointKind string
	donutKind string
}

var (
	_ ledger.BalanceStore    = (*Datastore)(nil)
	_ ledger.InfractionStore = (*Datastore)(nil)
)

// New constructs a *Datastore. Empty kind names fall back to the defaults.
func New(ds *datastore.Client, log *zap.Logger, pointKind, donutKind string) *Datastore {
	if pointKind == "" {
		pointKind = DefaultPointKind
	}
	if donutKind == "" {
		donutKind = DefaultDonutKind
	}
	return &Datastore{ds: ds, log: log, pointKind: pointKind, donutKind: donutKind}
}

func (s *Datastore) pointKey(userID string) *datastore.Key {
	return datastore.NameKey(s.pointKind, userID, nil)
}

func (s *Datastore) donutKey(id string) *datastore.Key {
	return datastore.NameKey(s.donutKind, id, nil)
}

// Points returns the stored score, 0 when the user has no record.
func (s *Datastore) Points(ctx context.Context, userID string) (int, error) {
	var ent pointEntity
	err := s.ds.Get(ctx, s.pointKey(userID), &ent)
	if err == datastore.ErrNoSuchEntity {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", userID, err)
	}
	return ent.Points, nil
}

// AddPoints increments the balance inside a transaction, creating the
// record on first touch. Concurrent awards to the same user serialize on
// the store's per-key read-modify-write.
func (s *Datastore) AddPoints(ctx context.Context, userID string, delta int) (int, error) {
	var score int
	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		key := s.pointKey(userID)
		var ent pointEntity
		err := tx.Get(key, &ent)
		if err == datastore.ErrNoSuchEntity {
			ent = pointEntity{UserID: userID}
		} else if err != nil {
			return err
		}
		ent.Points += delta
		score = ent.Points
		_, err = tx.Put(key, &ent)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("add points for %s: %w", userID, err)
	}

	s.log.Info("balance upserted",
		zap.String("userID", userID),
		zap.Int("delta", delta),
		zap.Int("score", score))

	return score, nil
}

// SetPoints overwrites the balance outright. Used by the history importer,
// never by the engines.
func (s *Datastore) SetPoints(ctx context.Context, userID string, points int) error {
	_, err := s.ds.Put(ctx, s.pointKey(userID), &pointEntity{UserID: userID, Points: points})
	if err != nil {
		return fmt.Errorf("set points for %s: %w", userID, err)
	}
	return nil
}

// Balances returns one page of balances. The next cursor is empty once a
// short page signals the end of the table.
func (s *Datastore) Balances(ctx context.Context, cursor string, limit int) ([]ledger.Balance, string, error) {
	q := datastore.NewQuery(s.pointKind).Limit(limit)
	if cursor != "" {
		start, err := datastore.DecodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode balance cursor: %w", err)
		}
		q = q.Start(start)
	}

	var balances []ledger.Balance
	it := s.ds.Run(ctx, q)
	for {
		var ent pointEntity
		_, err := it.Next(&ent)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("scan balances: %w", err)
		}
		balances = append(balances, ledger.Balance{UserID: ent.UserID, Score: ent.Points})
	}

	next := ""
	if len(balances) == limit {
		c, err := it.Cursor()
		if err != nil {
			return nil, "", fmt.Errorf("balance cursor: %w", err)
		}
		next = c.String()
	}

	s.log.Info("scanned balance page",
		zap.Int("count", len(balances)),
		zap.Bool("hasMore", next != ""))

	return balances, next, nil
}

// InfractionsByUser queries the user's full donut history via the userID
// index.
func (s *Datastore) InfractionsByUser(ctx context.Context, userID string) ([]ledger.Infraction, error) {
	q := datastore.NewQuery(s.donutKind).FilterField("userID", "=", userID)

	var ents []donutEntity
	keys, err := s.ds.GetAll(ctx, q, &ents)
	if err != nil {
		return nil, fmt.Errorf("query infractions for %s: %w", userID, err)
	}

	infractions := make([]ledger.Infraction, len(ents))
	for i, ent := range ents {
		infractions[i] = ledger.Infraction{
			ID:               keys[i].Name,
			UserID:           ent.UserID,
			DateOfInfraction: ent.DateOfInfraction,
			DateRepaid:       ent.DateRepaid,
		}
	}

	s.log.Info("found user donut history",
		zap.String("userID", userID),
		zap.Int("count", len(infractions)))

	return infractions, nil
}

// PutInfraction stores a new infraction under its id.
func (s *Datastore) PutInfraction(ctx context.Context, inf ledger.Infraction) error {
	ent := donutEntity{
		UserID:           inf.UserID,
		DateOfInfraction: inf.DateOfInfraction,
		DateRepaid:       inf.DateRepaid,
	}
	if _, err := s.ds.Put(ctx, s.donutKey(inf.ID), &ent); err != nil {
		return fmt.Errorf("put infraction %s: %w", inf.ID, err)
	}
	return nil
}

// MarkRepaid stamps the repayment date, transactionally refusing a second
// stamp. Infractions are never re-opened.
func (s *Datastore) MarkRepaid(ctx context.Context, id string, repaidAt time.Time) error {
	_, err := s.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		key := s.donutKey(id)
		var ent donutEntity
		if err := tx.Get(key, &ent); err != nil {
			return err
		}
		if !ent.DateRepaid.IsZero() {
			return errors.New("infraction already repaid")
		}
		ent.DateRepaid = repaidAt
		_, err := tx.Put(key, &ent)
		return err
	})
	if err != nil {
		return fmt.Errorf("mark infraction %s repaid: %w", id, err)
	}
	return nil
}

// OutstandingInfractions returns one page of unrepaid infractions.
func (s *Datastore) OutstandingInfractions(ctx context.Context, cursor string, limit int) ([]ledger.Infraction, string, error) {
	q := datastore.NewQuery(s.donutKind).
		FilterField("dateRepaid", "=", time.Time{}).
		Limit(limit)
	if cursor != "" {
		start, err := datastore.DecodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("decode infraction cursor: %w", err)
		}
		q = q.Start(start)
	}

	var infractions []ledger.Infraction
	it := s.ds.Run(ctx, q)
	for {
		var ent donutEntity
		key, err := it.Next(&ent)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("scan outstanding infractions: %w", err)
		}
		infractions = append(infractions, ledger.Infraction{
			ID:               key.Name,
			UserID:           ent.UserID,
			DateOfInfraction: ent.DateOfInfraction,
			DateRepaid:       ent.DateRepaid,
		})
	}

	next := ""
	if len(infractions) == limit {
		c, err := it.Cursor()
		if err != nil {
			return nil, "", fmt.Errorf("infraction cursor: %w", err)
		}
		next = c.String()
	}

	return infractions, next, nil
}
