package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeDirectory struct {
	users, channels []Member
	err             error
}

func (d *fakeDirectory) Users(ctx context.Context) ([]Member, error) {
	return d.users, d.err
}

func (d *fakeDirectory) Channels(ctx context.Context) ([]Member, error) {
	return d.channels, d.err
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	dir := &fakeDirectory{
		users:    []Member{{ID: "U03L9MPTE", Name: "dlsniper"}, {ID: "U2", Name: "jdoe"}},
		channels: []Member{{ID: "C1", Name: "elogtest"}},
	}

	tests := []struct {
		name string
		kind Kind
		id   string
		want string
		ok   bool
	}{
		{"user", Users, "U2", "jdoe", true},
		{"channel", Channels, "C1", "elogtest", true},
		{"channel id in users", Users, "C1", "", false},
		{"unknown", Channels, "C9", "", false},
		{"empty id", Users, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := Lookup(ctx, dir, tt.kind, tt.id)
			assert.Equal(t, tt.want, name)
			assert.Equal(t, tt.ok, ok)
		})
	}

	t.Run("listing failure", func(t *testing.T) {
		_, ok := Lookup(ctx, &fakeDirectory{users: dir.users, err: errors.New("ratelimited")}, Users, "U2")
		assert.False(t, ok)
	})

	t.Run("no directory", func(t *testing.T) {
		_, ok := Lookup(ctx, nil, Users, "U2")
		assert.False(t, ok)
	})
}
