// Command importhistory seeds the datastore from CSV exports of the
// previous tracker: one file of donut infractions and one of point
// balances.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aswnn/i11bot/ledger"
	"github.com/aswnn/i11bot/store"
)

type config struct {
	GCPProject string `env:"GCP_PROJECT,required"`
	PointTable string `env:"POINT_TABLE" envDefault:"UserPointTracker"`
	DonutTable string `env:"DONUT_TABLE" envDefault:"DonutHistory"`
	DonutCSV   string `env:"DONUT_CSV" envDefault:"DonutList.csv"`
	PointCSV   string `env:"POINT_CSV" envDefault:"PointHistory.csv"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	ds, err := datastore.NewClient(ctx, cfg.GCPProject)
	if err != nil {
		logger.Fatal("failed to create datastore client", zap.Error(err))
	}
	defer func() { _ = ds.Close() }()

	st := store.New(ds, logger, cfg.PointTable, cfg.DonutTable)

	n, err := importDonuts(ctx, st, cfg.DonutCSV)
	if err != nil {
		logger.Fatal("donut import failed", zap.Error(err))
	}
	logger.Info("imported donut history", zap.Int("rows", n))

	n, err = importPoints(ctx, st, cfg.PointCSV)
	if err != nil {
		logger.Fatal("point import failed", zap.Error(err))
	}
	logger.Info("imported point balances", zap.Int("rows", n))
}

func importDonuts(ctx context.Context, st *store.Datastore, path string) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	dateAdded, err := column(header, "DateAdded")
	if err != nil {
		return 0, err
	}
	dateRepaid, err := column(header, "DateRepaid")
	if err != nil {
		return 0, err
	}
	userID, err := column(header, "UserID")
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		inf := ledger.Infraction{
			ID:     uuid.NewString(),
			UserID: row[userID],
		}
		inf.DateOfInfraction, err = time.Parse(time.RFC3339, row[dateAdded])
		if err != nil {
			return i, fmt.Errorf("row %d: bad DateAdded: %w", i+2, err)
		}
		if row[dateRepaid] != "" {
			inf.DateRepaid, err = time.Parse(time.RFC3339, row[dateRepaid])
			if err != nil {
				return i, fmt.Errorf("row %d: bad DateRepaid: %w", i+2, err)
			}
		}
		if err := st.PutInfraction(ctx, inf); err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func importPoints(ctx context.Context, st *store.Datastore, path string) (int, error) {
	rows, header, err := readCSV(path)
	if err != nil {
		return 0, err
	}

	points, err := column(header, "Points")
	if err != nil {
		return 0, err
	}
	userID, err := column(header, "UserID")
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		score, err := strconv.Atoi(row[points])
		if err != nil {
			return i, fmt.Errorf("row %d: bad Points: %w", i+2, err)
		}
		if err := st.SetPoints(ctx, row[userID], score); err != nil {
			return i, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return len(rows), nil
}

func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}
	return records[1:], records[0], nil
}

func column(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("missing column %q", name)
}
