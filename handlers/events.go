package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/slack-go/slack/slackevents"
	"go.uber.org/zap"

	"github.com/aswnn/i11bot/bot"
	"github.com/aswnn/i11bot/text"
)

func (s *Server) event(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(noRetryHeader, "1")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.log.Error("failed to read event body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// The token is compared by hand below so a mismatch can answer 401
	// instead of surfacing as a parse failure.
	ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		s.log.Error("malformed event payload", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch ev.Type {
	case slackevents.URLVerification:
		uv, ok := ev.Data.(*slackevents.EventsAPIURLVerificationEvent)
		if !ok || uv.Token != s.token {
			s.log.Error("url verification failed")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(uv.Challenge))

	case slackevents.CallbackEvent:
		s.callback(w, r, ev)

	default:
		s.log.Info("unhandled event type", zap.String("type", ev.Type))
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request, ev slackevents.EventsAPIEvent) {
	if ev.Token != s.token {
		s.log.Error("invalid token received", zap.String("teamID", ev.TeamID))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if s.isRetry(r) {
		w.WriteHeader(http.StatusOK)
		return
	}

	var authedUsers []string
	if cb, ok := ev.Data.(*slackevents.EventsAPICallbackEvent); ok {
		authedUsers = cb.AuthedUsers
	}

	switch inner := ev.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		s.message(w, r, inner, authedUsers)
	default:
		s.log.Info("unhandled inner event", zap.String("type", ev.InnerEvent.Type))
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) message(w http.ResponseWriter, r *http.Request, ev *slackevents.MessageEvent, authedUsers []string) {
	ctx := r.Context()

	botID, err := s.identity.BotUserID(ctx)
	if err != nil {
		s.log.Error("failed to resolve bot identity", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(text.TryAgain))
		return
	}

	// The bot must never react to itself.
	if ev.User == botID || (ev.BotID != "" && ev.BotID == botID) {
		s.log.Warn("own message received, ignoring", zap.String("channel", ev.Channel))
		w.WriteHeader(http.StatusOK)
		return
	}

	switch ev.SubType {
	case "":
		err = s.bot.HandleMessage(ctx, bot.Message{
			Channel: ev.Channel,
			User:    ev.User,
			Text:    ev.Text,
		})
	case "bot_message":
		err = s.bot.HandleBotMessage(ctx, bot.BotMessage{
			Channel:  ev.Channel,
			Username: ev.Username,
			Text:     ev.Text,
		}, authedUsers)
	case "channel_join":
		err = s.bot.HandleChannelJoin(ctx, ev.User, ev.Channel)
	case "message_changed":
		// Edits never re-award points.
	default:
		s.log.Info("new message subtype", zap.String("subtype", ev.SubType))
	}

	if err != nil {
		s.log.Error("error while handling message event",
			zap.Error(err),
			zap.String("subtype", ev.SubType))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(text.TryAgain))
		return
	}

	w.WriteHeader(http.StatusOK)
}
