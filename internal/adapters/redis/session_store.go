package redis

// Package redis provides the Redis-backed AuthSession store.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/target/coursedesk/internal/cryptoutil"
	domainauth "github.com/target/coursedesk/internal/domain/auth"
	"github.com/target/coursedesk/internal/ports"
)

const (
	defaultPrefix = "authsession:"
	defaultTTL    = 30 * 24 * time.Hour
)

// compareAndSwapScript replaces KEYS[1] with ARGV[2] only while the stored
// refresh token fingerprint equals ARGV[1]. Returns 1 on swap, 0 otherwise.
const compareAndSwapScript = `
local cur = redis.call("GET", KEYS[1])
if not cur then
  return 0
end
local ok, decoded = pcall(cjson.decode, cur)
if not ok or decoded["rt_fp"] ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var compareAndSwapLua = redis.NewScript(compareAndSwapScript)

// SessionStoreOptions configures a SessionStore.
type SessionStoreOptions struct {
	// Prefix namespaces keys; defaults to "authsession:".
	Prefix string
	// TTL bounds how long a stored AuthSession survives. Refresh tokens outlive
	// access tokens, so this is the maximum session lifetime, not the access-token expiry.
	TTL time.Duration
	// Encryptor seals tokens at rest; defaults to cryptoutil.NoopEncryptor.
	Encryptor cryptoutil.Encryptor
}

// storedSession is the Redis value. The sealed AuthSession is bound to its key;
// rt_fp lets the CAS script compare refresh tokens without decrypting.
type storedSession struct {
	RefreshFingerprint string `json:"rt_fp"`
	Sealed             string `json:"sealed"`
}

// SessionStore is a Redis-based AuthSession store for production use.
// Load, Save and Delete are single commands and CompareAndSwap runs as a Lua script,
// so concurrent workers cannot both win a refresh.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	enc    cryptoutil.Encryptor
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	enc := opts.Encryptor
	if enc == nil {
		enc = cryptoutil.NoopEncryptor{}
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl, enc: enc}
}

func refreshFingerprint(refreshToken string) string {
	sum := sha256.Sum256([]byte(refreshToken))
	return hex.EncodeToString(sum[:])
}

func (s *SessionStore) encode(key string, sess domainauth.AuthSession) ([]byte, error) {
	plain, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal auth session: %w", err)
	}
	sealed, err := s.enc.Seal(plain, []byte(s.prefix+key))
	if err != nil {
		return nil, fmt.Errorf("seal auth session: %w", err)
	}
	return json.Marshal(storedSession{RefreshFingerprint: refreshFingerprint(sess.RefreshToken), Sealed: sealed})
}

func (s *SessionStore) decode(key string, data []byte) (domainauth.AuthSession, error) {
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return domainauth.AuthSession{}, fmt.Errorf("unmarshal stored session: %w", err)
	}
	plain, err := s.enc.Open(stored.Sealed, []byte(s.prefix+key))
	if err != nil {
		return domainauth.AuthSession{}, fmt.Errorf("open auth session: %w", err)
	}
	var sess domainauth.AuthSession
	if err := json.Unmarshal(plain, &sess); err != nil {
		return domainauth.AuthSession{}, fmt.Errorf("unmarshal auth session: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) Save(ctx context.Context, key string, sess domainauth.AuthSession) error {
	if key == "" {
		return errors.New("session key cannot be empty")
	}

	data, err := s.encode(key, sess)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *SessionStore) Load(ctx context.Context, key string) (domainauth.AuthSession, error) {
	if key == "" {
		return domainauth.AuthSession{}, ports.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.AuthSession{}, ports.ErrSessionNotFound
		}
		return domainauth.AuthSession{}, fmt.Errorf("redis get: %w", err)
	}

	return s.decode(key, data)
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *SessionStore) CompareAndSwap(
	ctx context.Context,
	key string,
	old, next domainauth.AuthSession,
) (bool, error) {
	if key == "" {
		return false, nil
	}

	data, err := s.encode(key, next)
	if err != nil {
		return false, err
	}

	n, err := compareAndSwapLua.Run(ctx, s.client,
		[]string{s.prefix + key},
		refreshFingerprint(old.RefreshToken), data, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-swap: %w", err)
	}
	return n == 1, nil
}

// Ping checks connectivity to Redis.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
