// Package chat wraps the Slack Web API behind the small surface the bot
// needs: posting messages, resolving a channel by name, and the bot's own
// identity.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// ErrChannelNotFound is returned when no channel matches the given name.
var ErrChannelNotFound = errors.New("channel not found")

// api is the part of *slack.Client used here.
type api interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	AuthTestContext(ctx context.Context) (*slack.AuthTestResponse, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

// Slack posts messages on behalf of the bot. The bot's resolved user ID is
// cached for the life of the process, filled on first use.
type Slack struct {
	api api
	log *zap.Logger

	mu        sync.Mutex
	botUserID string
}

// New constructs a *Slack.
func New(client *slack.Client, log *zap.Logger) *Slack {
	return &Slack{api: client, log: log}
}

// PostMessage sends text to a channel. Extra message options (icon emoji
// and the like) are passed through.
func (s *Slack) PostMessage(ctx context.Context, channel, msg string, opts ...slack.MsgOption) error {
	opts = append([]slack.MsgOption{slack.MsgOptionText(msg, false)}, opts...)
	_, _, err := s.api.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return fmt.Errorf("post message to %s: %w", channel, err)
	}
	return nil
}

// BotUserID returns the bot's own user ID, resolving it via auth.test at
// most once per process.
func (s *Slack) BotUserID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.botUserID != "" {
		return s.botUserID, nil
	}

	resp, err := s.api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth test: %w", err)
	}
	s.botUserID = resp.UserID

	s.log.Info("resolved bot identity", zap.String("botUserID", s.botUserID))

	return s.botUserID, nil
}

// ChannelIDByName finds a non-archived private channel by name, paging
// through the conversation list.
func (s *Slack) ChannelIDByName(ctx context.Context, name string) (string, error) {
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Types:           []string{"private_channel"},
		Limit:           200,
	}
	for {
		channels, next, err := s.api.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("list conversations: %w", err)
		}
		for _, channel := range channels {
			if channel.Name == name {
				return channel.ID, nil
			}
		}
		if next == "" {
			return "", ErrChannelNotFound
		}
		params.Cursor = next
	}
}
