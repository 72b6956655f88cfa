// Package memory provides an in-process AuthSession store for single-worker
// deployments and tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/ports"
)

type entry struct {
	sess      domainauth.AuthSession
	expiresAt time.Time
}

// SessionStore keeps AuthSessions in a mutex-guarded map. Entries expire after TTL.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionStore creates an empty store. A non-positive ttl keeps entries until deleted.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the time source used for expiry; intended for tests.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	s.now = now
	return s
}

func (s *SessionStore) Save(_ context.Context, key string, sess domainauth.AuthSession) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.newEntry(sess)
	return nil
}

func (s *SessionStore) Load(_ context.Context, key string) (domainauth.AuthSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok {
		return domainauth.AuthSession{}, ports.ErrSessionNotFound
	}
	return e.sess, nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *SessionStore) CompareAndSwap(_ context.Context, key string, old, next domainauth.AuthSession) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(key)
	if !ok || e.sess.RefreshToken != old.RefreshToken {
		return false, nil
	}
	s.entries[key] = s.newEntry(next)
	return true, nil
}

// Ping always succeeds.
func (s *SessionStore) Ping(context.Context) error { return nil }

// Len returns the number of live entries.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.entries {
		if _, ok := s.lookup(k); ok {
			n++
		}
	}
	return n
}

// lookup returns a live entry, evicting it when expired. Callers hold mu.
func (s *SessionStore) lookup(key string) (entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return entry{}, false
	}
	return e, true
}

func (s *SessionStore) newEntry(sess domainauth.AuthSession) entry {
	e := entry{sess: sess}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return e
}
