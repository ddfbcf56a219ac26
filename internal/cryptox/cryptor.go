// Package cryptox encrypts opaque tokens and identifiers, hashes passwords
// and generates random keys.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var (
	// ErrEmptyInput is returned when the input is empty after normalization.
	ErrEmptyInput = errors.New("cryptox: empty input")
	// ErrDecrypt covers every decode, authentication and padding failure.
	ErrDecrypt = errors.New("cryptox: decryption failed")
)

// Cryptor seals short strings with AES-256-GCM under a key derived from a
// per-deployment secret. Every ciphertext carries its own random nonce.
type Cryptor struct {
	aead   cipher.AEAD
	legacy *LegacyCBC
}

type Option func(*Cryptor)

// WithLegacy lets Decrypt fall back to tokens produced by the old static
// key/IV CBC scheme. Encrypt never uses it.
func WithLegacy(l *LegacyCBC) Option {
	return func(c *Cryptor) { c.legacy = l }
}

// New derives a 32-byte key with SHA-256 over secret.
func New(secret string, opts ...Option) (*Cryptor, error) {
	if secret == "" {
		return nil, fmt.Errorf("cryptox: secret is required")
	}
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	c := &Cryptor{aead: aead}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encrypt returns base64url(nonce || ciphertext || tag).
func (c *Cryptor) Encrypt(plaintext string) (string, error) {
	plaintext = Normalize(plaintext)
	if plaintext == "" {
		return "", ErrEmptyInput
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. When a legacy scheme is configured and the
// authenticated open fails, the legacy scheme is tried before giving up.
func (c *Cryptor) Decrypt(ciphertext string) (string, error) {
	ciphertext = Normalize(ciphertext)
	if ciphertext == "" {
		return "", ErrEmptyInput
	}

	plain, err := c.open(ciphertext)
	if err == nil {
		return plain, nil
	}
	if c.legacy != nil {
		if plain, lerr := c.legacy.Decrypt(ciphertext); lerr == nil {
			return plain, nil
		}
	}
	return "", err
}

func (c *Cryptor) open(ciphertext string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize+c.aead.Overhead() {
		return "", ErrDecrypt
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

// Normalize trims surrounding whitespace and drops control characters.
func Normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
