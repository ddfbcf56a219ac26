package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// LegacyCBC reproduces the pre-GCM token format: AES-256-CBC with a static
// key and IV, PKCS#7 padding, and the ciphertext base64-encoded twice.
//
// The key is the first 32 hex characters of SHA-256(key) used as raw bytes,
// the IV the first 16 hex characters of SHA-256(iv). It carries no
// authentication tag and is kept only to read tokens issued before the
// switch to Cryptor.
type LegacyCBC struct {
	block cipher.Block
	iv    []byte
}

func NewLegacyCBC(key, iv string) (*LegacyCBC, error) {
	keyHex := hexDigest(key)[:32]
	ivHex := hexDigest(iv)[:aes.BlockSize]

	block, err := aes.NewCipher([]byte(keyHex))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &LegacyCBC{block: block, iv: []byte(ivHex)}, nil
}

func hexDigest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Encrypt produces a token in the legacy format. It exists so operators can
// reproduce old links when debugging a migration.
func (l *LegacyCBC) Encrypt(plaintext string) (string, error) {
	plaintext = Normalize(plaintext)
	if plaintext == "" {
		return "", ErrEmptyInput
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(l.block, l.iv).CryptBlocks(out, padded)

	inner := base64.StdEncoding.EncodeToString(out)
	return base64.StdEncoding.EncodeToString([]byte(inner)), nil
}

func (l *LegacyCBC) Decrypt(ciphertext string) (string, error) {
	ciphertext = Normalize(ciphertext)
	if ciphertext == "" {
		return "", ErrEmptyInput
	}

	inner, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	raw, err := base64.StdEncoding.DecodeString(string(inner))
	if err != nil {
		return "", ErrDecrypt
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", ErrDecrypt
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(l.block, l.iv).CryptBlocks(out, raw)

	plain, ok := pkcs7Unpad(out, aes.BlockSize)
	if !ok {
		return "", ErrDecrypt
	}
	return string(plain), nil
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, size int) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
