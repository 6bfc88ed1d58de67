package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lsst/elogbot/elog"
)

type (
	// Source yields batches of real-time message events. A batch may be
	// empty; an error stops the bot.
	Source interface {
		Read(ctx context.Context) ([]Event, error)
	}

	// Responder posts text to a channel as the bot.
	Responder interface {
		Respond(ctx context.Context, channel, text string) error
	}

	// Handler runs a command and returns the reply text.
	Handler interface {
		Route(ctx context.Context, cmd Command) (string, error)
	}

	// Bot structure
	Bot struct {
		mention   string
		source    Source
		handler   Handler
		responder Responder
		limiter   *rate.Limiter
		devMode   bool
		log       *zap.Logger
	}
)

// Options configures a Bot.
type Options struct {
	// ID is the Slack user id of the bot.
	ID string
	// PollInterval is the minimum time between two reads of the source.
	PollInterval time.Duration
	// DevMode logs replies instead of sending them.
	DevMode bool
}

// New creates a Bot.
func New(opts Options, src Source, h Handler, r Responder, log *zap.Logger) *Bot {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		mention:   Mention(opts.ID),
		source:    src,
		handler:   h,
		responder: r,
		limiter:   rate.NewLimiter(rate.Every(opts.PollInterval), 1),
		devMode:   opts.DevMode,
		log:       log,
	}
}

// Run polls the source and handles one command at a time until ctx is done
// or the source fails.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("listening", zap.String("mention", b.mention))
	for {
		if err := b.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		batch, err := b.source.Read(ctx)
		if err != nil {
			return fmt.Errorf("reading events: %w", err)
		}

		cmd, ok := Filter(batch, b.mention)
		if !ok || cmd.Text == "" || cmd.Channel == "" {
			continue
		}
		b.HandleCommand(ctx, cmd)
	}
}

// HandleCommand routes cmd and replies in its channel. Failures are reported
// to the channel and never stop the bot.
func (b *Bot) HandleCommand(ctx context.Context, cmd Command) {
	log := b.log.With(
		zap.String("request_id", uuid.New().String()),
		zap.String("channel", cmd.Channel),
		zap.String("user", cmd.User),
	)
	log.Info("got command", zap.String("text", cmd.Text))

	text, err := b.handler.Route(ctx, cmd)
	if err != nil {
		log.Warn("command failed", zap.Error(err))
	}

	reply := ReplyText(text, err)
	if reply == "" {
		return
	}

	if b.devMode {
		log.Info("should reply", zap.String("reply", reply))
		return
	}

	if err := b.responder.Respond(ctx, cmd.Channel, reply); err != nil {
		log.Error("failed to send reply", zap.Error(err))
	}
}

// ReplyText is the message sent to the channel for the outcome of a command.
func ReplyText(text string, err error) string {
	if err == nil {
		return text
	}

	var te *elog.TransportError
	if errors.As(err, &te) {
		msg := fmt.Sprintf("eLog request failed: %s (%s)", te.Status, te.URL)
		if te.Body != "" {
			msg += "\n" + te.Body
		}
		return msg
	}
	return err.Error()
}
