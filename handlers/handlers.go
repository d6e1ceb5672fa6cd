// Package handlers is the HTTP gateway between Slack and the bot: the
// slash command endpoint and the Events API endpoint, with token
// verification and retry suppression at the edge.
package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/aswnn/i11bot/bot"
)

// Slack redelivers events it considers unanswered; replaying a delivery
// would double-apply point deltas, so retries are acknowledged and
// dropped, and every reply asks Slack not to retry.
const (
	retryNumHeader = "X-Slack-Retry-Num"
	noRetryHeader  = "X-Slack-No-Retry"
)

// Bot handles the work behind each route.
type Bot interface {
	HandleCommand(ctx context.Context, cmd slack.SlashCommand) (string, error)
	HandleMessage(ctx context.Context, msg bot.Message) error
	HandleBotMessage(ctx context.Context, msg bot.BotMessage, authedUsers []string) error
	HandleChannelJoin(ctx context.Context, userID, channel string) error
}

// Identity resolves the bot's own user ID so its messages can be skipped.
type Identity interface {
	BotUserID(ctx context.Context) (string, error)
}

// Server routes Slack HTTP traffic to the bot.
type Server struct {
	bot      Bot
	identity Identity
	token    string
	log      *zap.Logger

	router *mux.Router
}

// New constructs a *Server. token is the Slack verification token every
// inbound payload must carry.
func New(b Bot, identity Identity, token string, log *zap.Logger) *Server {
	s := &Server{
		bot:      b,
		identity: identity,
		token:    token,
		log:      log,
	}

	r := mux.NewRouter()
	r.HandleFunc("/slack/command", s.command).Methods(http.MethodPost)
	r.HandleFunc("/slack/event", s.event).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// isRetry reports and logs a Slack redelivery.
func (s *Server) isRetry(r *http.Request) bool {
	retry := r.Header.Get(retryNumHeader)
	if retry == "" {
		return false
	}
	s.log.Warn("retry header found, ignoring delivery",
		zap.String("retryNum", retry),
		zap.String("path", r.URL.Path))
	return true
}
