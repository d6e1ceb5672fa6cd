// Package bot implements the point and donut bot: slash command dispatch,
// passive point-mention handling, and donut poll detection.
package bot

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/aswnn/i11bot/ledger"
	"github.com/aswnn/i11bot/text"
)

// MaxLeaders is the leaderboard size for a bare "top" command.
const MaxLeaders = 5

// Messenger delivers replies to Slack.
type Messenger interface {
	PostMessage(ctx context.Context, channel, msg string, opts ...slack.MsgOption) error
}

var (
	broughtDonutsRE = regexp.MustCompile(`(?i)<@([^<@>|]+)[^>]*>\s+brought\sdonuts`)
	listTopRE       = regexp.MustCompile(`(?im)^top(?:\s(\d+))?`)
)

// Bot wires the engines to the messaging service. Each inbound command or
// event is handled as one independent unit of work; the Bot itself holds
// no per-request state.
type Bot struct {
	messenger Messenger
	points    *ledger.Points
	donuts    *ledger.Donuts
	log       *zap.Logger

	now func() time.Time
}

// New constructs a *Bot.
func New(messenger Messenger, points *ledger.Points, donuts *ledger.Donuts, log *zap.Logger) *Bot {
	return &Bot{
		messenger: messenger,
		points:    points,
		donuts:    donuts,
		log:       log,
		now:       time.Now,
	}
}

func donutIcon() slack.MsgOption {
	return slack.MsgOptionIconEmoji(":doughnut:")
}

// HandleCommand runs one slash command and returns the ephemeral reply
// body, empty when the reply was posted to the channel instead.
func (b *Bot) HandleCommand(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	command := strings.ToLower(strings.TrimSpace(cmd.Text))

	b.log.Info("slash command received",
		zap.String("command", command),
		zap.String("userID", cmd.UserID))

	switch {
	case command == "help":
		return text.Help(MaxLeaders), nil

	case command == "me":
		score, err := b.points.Score(ctx, cmd.UserID)
		if err != nil {
			return "", err
		}
		return text.MyScore(cmd.UserID, score), nil

	case command == "list donuts":
		return "", b.sendDonutList(ctx, cmd.ChannelID)

	case command == "next for donuts":
		return "", b.DonutReminder(ctx, cmd.ChannelID)

	case broughtDonutsRE.MatchString(cmd.Text):
		return b.broughtDonuts(ctx, cmd)

	case listTopRE.MatchString(command):
		return b.topUsers(ctx, command, cmd.ChannelID)
	}

	return text.InvalidCommand(command, MaxLeaders), nil
}

func (b *Bot) sendDonutList(ctx context.Context, channel string) error {
	rotation, err := b.donuts.Outstanding(ctx)
	if err != nil {
		return err
	}

	return b.messenger.PostMessage(ctx, channel, text.DonutList(rotation, b.now()), donutIcon())
}

// DonutReminder posts who is next due for donuts, or the all-caught-up
// message when no one is.
func (b *Bot) DonutReminder(ctx context.Context, channel string) error {
	next, err := b.donuts.NextDue(ctx)
	if err != nil {
		return err
	}

	return b.messenger.PostMessage(ctx, channel, text.NextForDonuts(next), donutIcon())
}

func (b *Bot) broughtDonuts(ctx context.Context, cmd slack.SlashCommand) (string, error) {
	target := broughtDonutsRE.FindStringSubmatch(cmd.Text)[1]

	// Repayment needs a second pair of hands to confirm.
	if target == cmd.UserID {
		return text.SelfBrought(cmd.UserID), nil
	}

	counts, err := b.donuts.RepayEarliest(ctx, target)
	if err != nil {
		return "", err
	}

	return "", b.messenger.PostMessage(ctx, cmd.ChannelID, text.BroughtDonuts(target, counts), donutIcon())
}

func (b *Bot) topUsers(ctx context.Context, command, channel string) (string, error) {
	n := MaxLeaders
	if match := listTopRE.FindStringSubmatch(command); match[1] != "" {
		parsed, err := strconv.Atoi(match[1])
		if err != nil {
			return "", err
		}
		n = parsed
	}

	if n < 1 {
		return "", b.messenger.PostMessage(ctx, channel, text.InvalidNumber(n))
	}

	users, err := b.points.TopN(ctx, n)
	if err != nil {
		return "", err
	}

	msg := text.TopUsers(users)
	if len(users) == 0 {
		return msg, nil
	}

	return "", b.messenger.PostMessage(ctx, channel, msg)
}
