// Command i11bot runs the Slack workspace bot: an HTTP server for the
// Events API and slash commands, plus a background donut reminder.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/aswnn/i11bot/bot"
	"github.com/aswnn/i11bot/chat"
	"github.com/aswnn/i11bot/handlers"
	"github.com/aswnn/i11bot/ledger"
	"github.com/aswnn/i11bot/remind"
	"github.com/aswnn/i11bot/store"
)

type config struct {
	BotToken          string        `env:"BOT_TOKEN,required"`
	VerificationToken string        `env:"VERIFICATION_TOKEN,required"`
	GCPProject        string        `env:"GCP_PROJECT,required"`
	PointTable        string        `env:"POINT_TABLE" envDefault:"UserPointTracker"`
	DonutTable        string        `env:"DONUT_TABLE" envDefault:"DonutHistory"`
	ListenAddr        string        `env:"LISTEN_ADDR" envDefault:":8080"`
	ReminderChannel   string        `env:"REMINDER_CHANNEL" envDefault:"chicago"`
	ReminderInterval  time.Duration `env:"REMINDER_INTERVAL" envDefault:"1h"`
	Environment       string        `env:"ENVIRONMENT" envDefault:"development"`
}

func main() {
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ds, err := datastore.NewClient(ctx, cfg.GCPProject)
	if err != nil {
		logger.Fatal("failed to create datastore client", zap.Error(err))
	}
	defer func() { _ = ds.Close() }()

	messenger := chat.New(slack.New(cfg.BotToken), logger)
	st := store.New(ds, logger, cfg.PointTable, cfg.DonutTable)
	points := ledger.NewPoints(st, logger)
	donuts := ledger.NewDonuts(st, logger)
	b := bot.New(messenger, points, donuts, logger)

	reminder := remind.New(func(ctx context.Context) error {
		channelID, err := messenger.ChannelIDByName(ctx, cfg.ReminderChannel)
		if err != nil {
			return err
		}
		return b.DonutReminder(ctx, channelID)
	}, logger)
	go reminder.Run(ctx, cfg.ReminderInterval)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      handlers.New(b, messenger, cfg.VerificationToken, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info("shutting down", zap.String("signal", s.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
