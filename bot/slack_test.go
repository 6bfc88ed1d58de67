package bot

import (
	"context"
	"testing"
	"time"

	"github.com/nlopes/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testMsg(text, user, botID, subType string) slack.RTMEvent {
	return slack.RTMEvent{
		Type: "message",
		Data: &slack.MessageEvent{
			Msg: slack.Msg{
				Text:      text,
				Channel:   "C1",
				User:      user,
				BotID:     botID,
				SubType:   subType,
				Timestamp: "1500000000.000100",
			},
		},
	}
}

func TestRTMSourceRead(t *testing.T) {
	rtm := &slack.RTM{IncomingEvents: make(chan slack.RTMEvent, 8)}
	src := NewRTMSource(rtm, 10*time.Millisecond, zap.NewNop())

	t.Run("timeout yields an empty batch", func(t *testing.T) {
		batch, err := src.Read(context.Background())
		require.NoError(t, err)
		assert.Empty(t, batch)
	})

	t.Run("drops bot messages", func(t *testing.T) {
		rtm.IncomingEvents <- slack.RTMEvent{Type: "connected", Data: &slack.ConnectedEvent{ConnectionCount: 1}}
		rtm.IncomingEvents <- testMsg("<@UBOT> /get 1", "U2", "", "")
		rtm.IncomingEvents <- testMsg("eLog entry 1", "", "B1", "bot_message")
		rtm.IncomingEvents <- testMsg("<@UBOT> hi", "UBOT", "B2", "")
		rtm.IncomingEvents <- testMsg("<@UBOT> /listcat", "U3", "", "")

		batch, err := src.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []Event{
			{Text: "<@UBOT> /get 1", Channel: "C1", User: "U2", Timestamp: "1500000000.000100"},
			{Text: "<@UBOT> /listcat", Channel: "C1", User: "U3", Timestamp: "1500000000.000100"},
		}, batch)
	})

	t.Run("invalid auth", func(t *testing.T) {
		rtm.IncomingEvents <- slack.RTMEvent{Type: "invalid_auth", Data: &slack.InvalidAuthEvent{}}
		_, err := src.Read(context.Background())
		assert.Equal(t, ErrInvalidAuth, err)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		batch, err := src.Read(ctx)
		assert.NoError(t, err)
		assert.Empty(t, batch)
	})
}
