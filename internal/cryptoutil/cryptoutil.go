package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encryptor seals values at rest. Associated data binds a ciphertext to its context
// (for example the storage key) so it cannot be replayed under another one.
type Encryptor interface {
	Seal(plaintext, aad []byte) (string, error)
	Open(ciphertext string, aad []byte) ([]byte, error)
}

// AESGCMEncryptor implements Encryptor using AES-256-GCM.
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

const (
	// Versioned prefix to allow future key/algorithm rotations without data migrations.
	cipherPrefixV1 = "v1:"
	noopPrefix     = "noop:"
)

// NewAESGCMEncryptor constructs a new AESGCMEncryptor. Key must be 32 bytes (AES-256).
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

// NewEncryptorFromKey derives an encryptor from a configured key. A 64 character hex string is
// used as the raw AES-256 key; anything else is hashed with SHA-256. An empty key yields NoopEncryptor.
//
//nolint:ireturn // callers choose between AES and noop at startup
func NewEncryptorFromKey(key string) (Encryptor, error) {
	if key == "" {
		return NoopEncryptor{}, nil
	}
	keyBytes, err := hex.DecodeString(key)
	if err != nil || len(keyBytes) != 32 {
		sum := sha256.Sum256([]byte(key))
		keyBytes = sum[:]
	}
	return NewAESGCMEncryptor(keyBytes)
}

// Seal encrypts plaintext with a random nonce and returns a versioned base64 string.
func (e *AESGCMEncryptor) Seal(plaintext, aad []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	// nonce||ciphertext
	buf := e.aead.Seal(nonce, nonce, plaintext, aad)
	return cipherPrefixV1 + base64.StdEncoding.EncodeToString(buf), nil
}

// Open decrypts a string created by Seal with the same associated data.
// Values written by NoopEncryptor are accepted so a key can be introduced without flushing the store.
func (e *AESGCMEncryptor) Open(ciphertext string, aad []byte) ([]byte, error) {
	if strings.HasPrefix(ciphertext, noopPrefix) {
		return NoopEncryptor{}.Open(ciphertext, aad)
	}
	if !strings.HasPrefix(ciphertext, cipherPrefixV1) {
		prefix := ciphertext
		if len(prefix) > 10 {
			prefix = prefix[:10]
		}
		return nil, fmt.Errorf("unknown ciphertext version (prefix: %s)", prefix)
	}
	data, err := base64.StdEncoding.DecodeString(ciphertext[len(cipherPrefixV1):])
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	pt, err := e.aead.Open(nil, data[:nonceSize], data[nonceSize:], aad)
	if err != nil {
		return nil, fmt.Errorf("open ciphertext: %w", err)
	}
	return pt, nil
}

// NoopEncryptor stores plaintext with a prefix marker. Used when no key is configured.
type NoopEncryptor struct{}

func (NoopEncryptor) Seal(plaintext, _ []byte) (string, error) {
	return noopPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (NoopEncryptor) Open(ciphertext string, _ []byte) ([]byte, error) {
	if !strings.HasPrefix(ciphertext, noopPrefix) {
		return nil, errors.New("invalid noop ciphertext")
	}
	return base64.StdEncoding.DecodeString(ciphertext[len(noopPrefix):])
}
