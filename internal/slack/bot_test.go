package slack

import (
	"testing"
	"time"

	"github.com/slack-go/slack/slackevents"
	"github.com/stretchr/testify/require"
)

func TestQuestionFromMention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "mention with question",
			text: "<@U12345> What is the VPN setup process?",
			want: "What is the VPN setup process?",
		},
		{
			name: "mention with extra whitespace",
			text: "<@U12345>    how do I book a desk  ",
			want: "how do I book a desk",
		},
		{
			name: "mention only",
			text: "<@U12345>",
			want: "",
		},
		{
			name: "no mention marker",
			text: "plain text without a mention",
			want: "",
		},
		{
			name: "empty text",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, questionFromMention(tt.text))
		})
	}
}

func TestShouldAnswerMessage(t *testing.T) {
	t.Parallel()

	bot := &Bot{botUserID: "UBOT"}

	tests := []struct {
		name string
		ev   slackevents.MessageEvent
		want bool
	}{
		{
			name: "direct message",
			ev:   slackevents.MessageEvent{ChannelType: "im", User: "U1", Text: "hello"},
			want: true,
		},
		{
			name: "channel message ignored",
			ev:   slackevents.MessageEvent{ChannelType: "channel", User: "U1", Text: "hello"},
			want: false,
		},
		{
			name: "own message ignored",
			ev:   slackevents.MessageEvent{ChannelType: "im", User: "UBOT", Text: "hello"},
			want: false,
		},
		{
			name: "bot message ignored",
			ev:   slackevents.MessageEvent{ChannelType: "im", User: "U1", BotID: "B1", Text: "hello"},
			want: false,
		},
		{
			name: "edited message ignored",
			ev:   slackevents.MessageEvent{ChannelType: "im", User: "U1", SubType: "message_changed", Text: "hello"},
			want: false,
		},
		{
			name: "empty text ignored",
			ev:   slackevents.MessageEvent{ChannelType: "im", User: "U1", Text: "   "},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, bot.shouldAnswerMessage(&tt.ev))
		})
	}
}

func TestMarkResponded_SuppressesDuplicates(t *testing.T) {
	t.Parallel()

	bot := &Bot{respondedMessages: make(map[string]time.Time)}

	require.True(t, bot.markResponded("C1:1700000000.000100"))
	require.False(t, bot.markResponded("C1:1700000000.000100"))
	require.True(t, bot.markResponded("C1:1700000000.000200"))
}
