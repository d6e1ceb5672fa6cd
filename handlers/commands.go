package handlers

import (
	"net/http"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/aswnn/i11bot/text"
)

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(noRetryHeader, "1")

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		s.log.Error("malformed slash command payload", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if cmd.Token != s.token {
		s.log.Error("invalid token received",
			zap.String("userID", cmd.UserID),
			zap.String("channelID", cmd.ChannelID))
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if s.isRetry(r) {
		w.WriteHeader(http.StatusOK)
		return
	}

	body, err := s.bot.HandleCommand(r.Context(), cmd)
	if err != nil {
		s.log.Error("error while handling command",
			zap.Error(err),
			zap.String("text", cmd.Text))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(text.TryAgain))
		return
	}

	w.WriteHeader(http.StatusOK)
	if body != "" {
		_, _ = w.Write([]byte(body))
	}
}
