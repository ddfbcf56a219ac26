package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"
)

// ResetKeyLength is the length of the key stored against a reset request.
const ResetKeyLength = 20

// GenerateKey returns n random alphanumeric characters.
func GenerateKey(n int) (string, error) {
	return randomString(alphanumeric, n)
}

// GenerateDigits returns n random decimal digits, used for verification codes.
func GenerateDigits(n int) (string, error) {
	return randomString(digits, n)
}

func randomString(charset string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("length must be positive, got %d", n)
	}
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}

// Equal compares two secrets in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
