package slack

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/povarna/knowledge-assistant/internal/answer"
	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// apologyText is the only failure text a user ever sees. Internal errors,
// query text and stack traces stay in the logs.
const apologyText = "I apologize, but I encountered an error processing your request. Please try again or rephrase your question."

const respondedMessagesMaxAge = 1 * time.Hour

// Answerer produces the composed answer for one question.
type Answerer interface {
	Compose(ctx context.Context, question string) (answer.Answer, error)
}

// Bot receives Slack events over Socket Mode and replies with composed
// answers. It responds to explicit mentions in channels and to every
// direct message; all other event shapes are ignored.
type Bot struct {
	api      *slack.Client
	socket   *socketmode.Client
	answerer Answerer
	timeout  time.Duration

	botUserID string

	// Track messages we've already answered (by channel and timestamp) so
	// a Slack event redelivery does not produce a duplicate reply.
	respondedMessages   map[string]time.Time
	respondedMessagesMu sync.Mutex
}

func NewBot(cfg *Config, answerer Answerer, timeout time.Duration) *Bot {
	api := slack.New(
		cfg.BotToken,
		slack.OptionAppLevelToken(cfg.AppToken),
	)

	return &Bot{
		api:               api,
		socket:            socketmode.New(api),
		answerer:          answerer,
		timeout:           timeout,
		botUserID:         cfg.BotUserID,
		respondedMessages: make(map[string]time.Time),
	}
}

// Initialize resolves the bot's own user ID so its messages can be told
// apart from user messages.
func (b *Bot) Initialize(ctx context.Context) error {
	identity, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return err
	}
	b.botUserID = identity.UserID
	return nil
}

// Run starts the Socket Mode connection and processes events until the
// context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	go func() {
		if err := b.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Socket mode client stopped")
		}
	}()

	go b.cleanupLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-b.socket.Events:
			if !ok {
				return nil
			}
			b.handleSocketEvent(ctx, evt)
		}
	}
}

func (b *Bot) handleSocketEvent(ctx context.Context, evt socketmode.Event) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}

	eventsAPIEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	if evt.Request != nil {
		b.socket.Ack(*evt.Request)
	}

	metrics.EventsReceivedTotal.WithLabelValues(eventsAPIEvent.InnerEvent.Type).Inc()

	switch ev := eventsAPIEvent.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		question := questionFromMention(ev.Text)
		if question == "" {
			metrics.MessagesIgnoredTotal.WithLabelValues("empty_mention").Inc()
			return
		}
		go b.respond(ctx, ev.Channel, ev.ThreadTimeStamp, ev.TimeStamp, question)

	case *slackevents.MessageEvent:
		if !b.shouldAnswerMessage(ev) {
			return
		}
		go b.respond(ctx, ev.Channel, ev.ThreadTimeStamp, ev.TimeStamp, strings.TrimSpace(ev.Text))
	}
}

// Only plain direct messages from users are answered. Channel messages are
// covered by the mention event, and the bot's own messages are skipped so
// it never talks to itself.
func (b *Bot) shouldAnswerMessage(ev *slackevents.MessageEvent) bool {
	if ev.ChannelType != "im" {
		metrics.MessagesIgnoredTotal.WithLabelValues("not_dm").Inc()
		return false
	}
	if ev.BotID != "" || ev.User == b.botUserID {
		metrics.MessagesIgnoredTotal.WithLabelValues("bot_message").Inc()
		return false
	}
	if ev.SubType != "" {
		metrics.MessagesIgnoredTotal.WithLabelValues("subtype").Inc()
		return false
	}
	if strings.TrimSpace(ev.Text) == "" {
		metrics.MessagesIgnoredTotal.WithLabelValues("empty_text").Inc()
		return false
	}
	return true
}

// respond is the outermost request boundary: whatever goes wrong inside,
// including a panic, the user gets the fixed apology and the process keeps
// serving other requests.
func (b *Bot) respond(ctx context.Context, channel, threadTS, messageTS, question string) {
	messageKey := channel + ":" + messageTS
	if !b.markResponded(messageKey) {
		metrics.MessagesIgnoredTotal.WithLabelValues("duplicate").Inc()
		return
	}

	start := time.Now()
	defer func() {
		metrics.RequestDuration.Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("channel", channel).Msg("Panic while handling question")
			b.reply(channel, threadTS, apologyText)
			metrics.AnswersPostedTotal.WithLabelValues("panic").Inc()
		}
	}()

	requestCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	log.Info().
		Str("channel", channel).
		Str("question", question).
		Msg("Processing question")

	composed, err := b.answerer.Compose(requestCtx, question)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to compose answer")
		b.reply(channel, threadTS, apologyText)
		metrics.AnswersPostedTotal.WithLabelValues("error").Inc()
		return
	}

	b.reply(channel, threadTS, composed.Text)
	metrics.AnswersPostedTotal.WithLabelValues("ok").Inc()
}

func (b *Bot) reply(channel, threadTS, text string) {
	options := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		options = append(options, slack.MsgOptionTS(threadTS))
	}

	if _, _, err := b.api.PostMessage(channel, options...); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("Failed to post reply")
	}
}

// markResponded records the message and reports whether it was new.
func (b *Bot) markResponded(messageKey string) bool {
	b.respondedMessagesMu.Lock()
	defer b.respondedMessagesMu.Unlock()

	if _, seen := b.respondedMessages[messageKey]; seen {
		return false
	}
	b.respondedMessages[messageKey] = time.Now()
	return true
}

func (b *Bot) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			b.respondedMessagesMu.Lock()
			for messageKey, timestamp := range b.respondedMessages {
				if now.Sub(timestamp) > respondedMessagesMaxAge {
					delete(b.respondedMessages, messageKey)
				}
			}
			b.respondedMessagesMu.Unlock()
		}
	}
}

// questionFromMention strips the leading mention marker: the question is
// whatever follows the first '>' delimiter. Mentions with no text after
// the marker yield an empty question.
func questionFromMention(text string) string {
	_, after, found := strings.Cut(text, ">")
	if !found {
		return ""
	}
	return strings.TrimSpace(after)
}
