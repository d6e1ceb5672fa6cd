package chat

import (
	"context"
	"testing"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type fakeAPI struct {
	authCalls int
	posted    []string

	channelPages [][]slack.Channel
	page         int
}

func (f *fakeAPI) PostMessageContext(_ context.Context, channelID string, _ ...slack.MsgOption) (string, string, error) {
	f.posted = append(f.posted, channelID)
	return channelID, "1000", nil
}

func (f *fakeAPI) AuthTestContext(context.Context) (*slack.AuthTestResponse, error) {
	f.authCalls++
	return &slack.AuthTestResponse{UserID: "UBOT"}, nil
}

func (f *fakeAPI) GetConversationsContext(_ context.Context, _ *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	if f.page >= len(f.channelPages) {
		return nil, "", nil
	}
	channels := f.channelPages[f.page]
	f.page++
	next := ""
	if f.page < len(f.channelPages) {
		next = "more"
	}
	return channels, next, nil
}

func channel(id, name string) slack.Channel {
	var c slack.Channel
	c.ID = id
	c.Name = name
	return c
}

func TestBotUserIDFillsOnce(t *testing.T) {
	api := &fakeAPI{}
	s := &Slack{api: api, log: zap.NewNop()}

	for i := 0; i < 3; i++ {
		id, err := s.BotUserID(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "UBOT" {
			t.Errorf("expected: %q\nactual:%q", "UBOT", id)
		}
	}

	if api.authCalls != 1 {
		t.Errorf("expected a single auth.test call, got %d", api.authCalls)
	}
}

func TestChannelIDByName(t *testing.T) {
	t.Run("found on a later page", func(t *testing.T) {
		api := &fakeAPI{channelPages: [][]slack.Channel{
			{channel("C1", "general")},
			{channel("C2", "chicago")},
		}}
		s := &Slack{api: api, log: zap.NewNop()}

		id, err := s.ChannelIDByName(context.Background(), "chicago")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id != "C2" {
			t.Errorf("expected: %q\nactual:%q", "C2", id)
		}
	})

	t.Run("missing channel", func(t *testing.T) {
		api := &fakeAPI{channelPages: [][]slack.Channel{{channel("C1", "general")}}}
		s := &Slack{api: api, log: zap.NewNop()}

		_, err := s.ChannelIDByName(context.Background(), "nowhere")
		if err != ErrChannelNotFound {
			t.Errorf("expected ErrChannelNotFound, got %v", err)
		}
	})
}
