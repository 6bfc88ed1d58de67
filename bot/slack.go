package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nlopes/slack"
	"go.uber.org/zap"
)

// ErrInvalidAuth is returned by RTMSource when Slack rejects the token.
var ErrInvalidAuth = errors.New("slack rejected the bot token")

// RTMSource reads message events from a Slack RTM connection.
type RTMSource struct {
	rtm  *slack.RTM
	wait time.Duration
	log  *zap.Logger
}

// NewRTMSource creates an RTMSource. Read blocks at most wait for the first
// event of a batch. The caller runs rtm.ManageConnection.
func NewRTMSource(rtm *slack.RTM, wait time.Duration, log *zap.Logger) *RTMSource {
	return &RTMSource{rtm: rtm, wait: wait, log: log}
}

// Read returns the message events received so far. Messages posted by bots,
// including this one, are dropped.
func (s *RTMSource) Read(ctx context.Context) ([]Event, error) {
	timer := time.NewTimer(s.wait)
	defer timer.Stop()

	var batch []Event
	select {
	case <-ctx.Done():
		return nil, nil
	case <-timer.C:
		return nil, nil
	case msg, ok := <-s.rtm.IncomingEvents:
		if !ok {
			return nil, errors.New("slack RTM connection closed")
		}
		if err := s.collect(msg, &batch); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case msg, ok := <-s.rtm.IncomingEvents:
			if !ok {
				return batch, nil
			}
			if err := s.collect(msg, &batch); err != nil {
				return nil, err
			}
		default:
			return batch, nil
		}
	}
}

func (s *RTMSource) collect(msg slack.RTMEvent, batch *[]Event) error {
	switch ev := msg.Data.(type) {
	case *slack.MessageEvent:
		if ev.BotID != "" || ev.User == "" || ev.SubType == "bot_message" {
			return nil
		}
		*batch = append(*batch, Event{
			Text:      ev.Text,
			Channel:   ev.Channel,
			User:      ev.User,
			Timestamp: ev.Timestamp,
		})

	case *slack.ConnectedEvent:
		s.log.Info("connected to slack", zap.Int("connection_count", ev.ConnectionCount))

	case *slack.RTMError:
		s.log.Warn("slack RTM error", zap.Error(ev))

	case *slack.InvalidAuthEvent:
		return ErrInvalidAuth
	}
	return nil
}

// SlackResponder posts replies as the bot user.
type SlackResponder struct {
	api *slack.Client
}

// NewSlackResponder creates a SlackResponder.
func NewSlackResponder(api *slack.Client) *SlackResponder {
	return &SlackResponder{api: api}
}

// Respond calls chat.postMessage.
func (r *SlackResponder) Respond(ctx context.Context, channel, text string) error {
	_, _, err := r.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionAsUser(true),
	)
	return err
}

// ResolveID returns configured, or the user id of the token's owner as
// reported by auth.test when configured is empty.
func ResolveID(ctx context.Context, api *slack.Client, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	resp, err := api.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("determining bot ID: %w", err)
	}
	return resp.UserID, nil
}
