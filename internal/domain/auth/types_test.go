package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_Username(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		want string
	}{
		{name: "display name wins", id: Identity{DisplayName: "ada", Email: "a@x.io"}, want: "ada"},
		{name: "metadata username", id: Identity{Email: "a@x.io", Metadata: map[string]any{"username": "lovelace"}}, want: "lovelace"},
		{name: "email local part", id: Identity{Email: "grace@x.io"}, want: "grace"},
		{name: "email without at", id: Identity{Email: "grace"}, want: "grace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.Username())
		})
	}
}

func TestAuthSession_Expired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{name: "unknown expiry", expires: time.Time{}, want: false},
		{name: "well in the future", expires: now.Add(time.Hour), want: false},
		{name: "inside leeway", expires: now.Add(ExpiryLeeway / 2), want: true},
		{name: "exactly at leeway", expires: now.Add(ExpiryLeeway), want: true},
		{name: "in the past", expires: now.Add(-time.Minute), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AuthSession{AccessToken: "a", ExpiresAt: tt.expires}
			assert.Equal(t, tt.want, s.Expired(now))
		})
	}
}

func TestServerSession_IsZero(t *testing.T) {
	assert.True(t, ServerSession{}.IsZero())
	assert.False(t, ServerSession{ID: "sid"}.IsZero())
}
