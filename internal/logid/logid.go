// Package logid generates and validates the public identifiers of stored logs.
package logid

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// Alphabet excludes look-alike characters (0/O, 1/l/I).
	Alphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// Length of generated identifiers. 57^10 is roughly 2^58.
	Length = 10

	// MaxLength bounds identifiers accepted by Validate. Ids minted by older
	// deployments may be shorter or use the full [a-zA-Z0-9_-] charset.
	MaxLength = 64
)

// ErrInvalidFormat is returned for empty, overlong, or out-of-charset candidates.
var ErrInvalidFormat = errors.New("invalid identifier format")

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a fresh random identifier. Callers must still claim it
// atomically in the store; uniqueness is not guaranteed here.
func Generate() (string, error) {
	b := make([]byte, Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("reading random source: %w", err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}

// Validate checks that candidate is a well-formed identifier and returns it.
func Validate(candidate string) (string, error) {
	if candidate == "" || len(candidate) > MaxLength {
		return "", fmt.Errorf("%w: length %d", ErrInvalidFormat, len(candidate))
	}
	for i := 0; i < len(candidate); i++ {
		if !allowed(candidate[i]) {
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidFormat, candidate[i])
		}
	}
	return candidate, nil
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}
