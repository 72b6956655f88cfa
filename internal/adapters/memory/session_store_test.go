package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/ports"
)

func TestSessionStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(0)

	_, err := store.Load(ctx, "sid")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	sess := domainauth.AuthSession{AccessToken: "a1", RefreshToken: "r1"}
	require.NoError(t, store.Save(ctx, "sid", sess))

	got, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "sid"))
	_, err = store.Load(ctx, "sid")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.Error(t, store.Save(ctx, "", sess))
	require.NoError(t, store.Delete(ctx, ""))
	require.NoError(t, store.Ping(ctx))
}

func TestSessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewSessionStore(time.Hour).WithClock(func() time.Time { return now })

	require.NoError(t, store.Save(ctx, "sid", domainauth.AuthSession{AccessToken: "a", RefreshToken: "r"}))

	now = now.Add(59 * time.Minute)
	_, err := store.Load(ctx, "sid")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "sid")
	require.ErrorIs(t, err, ports.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestSessionStore_CompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(0)
	old := domainauth.AuthSession{AccessToken: "a1", RefreshToken: "r1"}
	next := domainauth.AuthSession{AccessToken: "a2", RefreshToken: "r2"}

	ok, err := store.CompareAndSwap(ctx, "sid", old, next)
	require.NoError(t, err)
	assert.False(t, ok, "missing key must not swap")

	require.NoError(t, store.Save(ctx, "sid", old))

	ok, err = store.CompareAndSwap(ctx, "sid", domainauth.AuthSession{RefreshToken: "stale"}, next)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.CompareAndSwap(ctx, "sid", old, next)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestSessionStore_ConcurrentCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(0)
	old := domainauth.AuthSession{AccessToken: "a1", RefreshToken: "r1"}
	require.NoError(t, store.Save(ctx, "sid", old))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.CompareAndSwap(ctx, "sid", old, domainauth.AuthSession{AccessToken: "a2", RefreshToken: "r2"})
			assert.NoError(t, err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
