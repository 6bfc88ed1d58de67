package bot

import (
	"context"

	"github.com/nlopes/slack"
	"go.uber.org/zap"
)

// Kind selects a directory listing.
type Kind int

const (
	Users Kind = iota
	Channels
)

func (k Kind) String() string {
	if k == Channels {
		return "channels"
	}
	return "users"
}

// Member is an entry of a directory listing.
type Member struct {
	ID   string
	Name string
}

// Directory lists the users and channels of the workspace.
type Directory interface {
	Users(ctx context.Context) ([]Member, error)
	Channels(ctx context.Context) ([]Member, error)
}

// Lookup returns the name of the user or channel with the given id. A failed
// listing is reported the same way as an unknown id.
func Lookup(ctx context.Context, d Directory, kind Kind, id string) (string, bool) {
	if d == nil || id == "" {
		return "", false
	}

	var (
		members []Member
		err     error
	)
	switch kind {
	case Channels:
		members, err = d.Channels(ctx)
	default:
		members, err = d.Users(ctx)
	}
	if err != nil {
		return "", false
	}

	for _, m := range members {
		if m.ID == id {
			return m.Name, true
		}
	}
	return "", false
}

// SlackDirectory is a Directory backed by the Slack Web API.
type SlackDirectory struct {
	api *slack.Client
	log *zap.Logger
}

// NewSlackDirectory creates a SlackDirectory.
func NewSlackDirectory(api *slack.Client, log *zap.Logger) *SlackDirectory {
	return &SlackDirectory{api: api, log: log}
}

// Users calls users.list.
func (d *SlackDirectory) Users(ctx context.Context) ([]Member, error) {
	users, err := d.api.GetUsersContext(ctx)
	if err != nil {
		d.log.Debug("listing users failed", zap.Error(err))
		return nil, err
	}

	members := make([]Member, 0, len(users))
	for _, u := range users {
		members = append(members, Member{ID: u.ID, Name: u.Name})
	}
	return members, nil
}

// Channels calls conversations.list for public and private channels,
// following the pagination cursor.
func (d *SlackDirectory) Channels(ctx context.Context) ([]Member, error) {
	params := &slack.GetConversationsParameters{
		Types: []string{"public_channel", "private_channel"},
		Limit: 200,
	}

	var members []Member
	for {
		channels, cursor, err := d.api.GetConversationsContext(ctx, params)
		if err != nil {
			d.log.Debug("listing channels failed", zap.Error(err))
			return nil, err
		}
		for _, c := range channels {
			members = append(members, Member{ID: c.ID, Name: c.Name})
		}
		if cursor == "" {
			return members, nil
		}
		params.Cursor = cursor
	}
}
