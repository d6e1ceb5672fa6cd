package bot

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/aswnn/i11bot/text"
)

// pollUsername is the polling integration whose messages are inspected
// for donut polls.
const pollUsername = "Polly"

var donutPollRE = regexp.MustCompile(`(?i)do(?:ugh)?nut`)

// Message is a plain user channel message handed over by the gateway.
type Message struct {
	Channel string
	User    string
	Text    string
}

// BotMessage is a bot-authored message (subtype bot_message).
type BotMessage struct {
	Channel  string
	Username string
	Text     string
}

// HandleMessage scans a user message for point-change mentions and applies
// them. Text matching no pattern is silently ignored.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) error {
	action := ParseMessage(msg.Text)
	if action.Kind == ActionNone {
		return nil
	}

	for _, userID := range action.Users {
		// Authors cannot award themselves; everyone else in the same
		// message is still processed.
		if userID == msg.User {
			if err := b.messenger.PostMessage(ctx, msg.Channel, text.SelfAward(msg.User)); err != nil {
				return err
			}
			continue
		}

		score, err := b.points.Apply(ctx, userID, action.Delta)
		if err != nil {
			return err
		}

		if err := b.messenger.PostMessage(ctx, msg.Channel, text.PointChange(userID, action.Delta, score)); err != nil {
			return err
		}
	}

	return nil
}

// HandleBotMessage inspects bot-authored messages for donut polls and adds
// the flagged user to the list. The first authed user of the event is
// taken as the poll author; the payload carries no better signal, so this
// stays a heuristic.
func (b *Bot) HandleBotMessage(ctx context.Context, msg BotMessage, authedUsers []string) error {
	if msg.Username != pollUsername {
		return nil
	}
	if !strings.Contains(strings.ToLower(strings.TrimSpace(msg.Text)), "poll") {
		return nil
	}
	if !donutPollRE.MatchString(msg.Text) {
		return nil
	}
	if len(authedUsers) == 0 {
		return nil
	}

	userID := authedUsers[0]

	b.log.Info("donut poll detected",
		zap.String("userID", userID),
		zap.Strings("authedUsers", authedUsers))

	counts, err := b.donuts.Record(ctx, userID)
	if err != nil {
		return err
	}

	return b.messenger.PostMessage(ctx, msg.Channel, text.DonutAdded(userID, counts), donutIcon())
}

// HandleChannelJoin greets a user who joined a channel.
func (b *Bot) HandleChannelJoin(ctx context.Context, userID, channel string) error {
	return b.messenger.PostMessage(ctx, channel, text.ChannelJoin(userID, channel))
}
