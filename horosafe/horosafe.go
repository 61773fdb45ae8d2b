// Package horosafe holds the small security primitives shared by the auth
// layer: secret length validation and bounded reads of upstream responses.
package horosafe

import (
	"fmt"
	"io"
)

// MinSecretLen is the minimum length of an HS256 session secret (256 bits).
const MinSecretLen = 32

// MaxResponseBody caps reads of identity-provider responses (1 MiB).
const MaxResponseBody int64 = 1 << 20

// ErrSecretTooShort is returned when a secret does not meet MinSecretLen.
var ErrSecretTooShort = fmt.Errorf("horosafe: secret must be at least %d bytes", MinSecretLen)

// ValidateSecret checks that secret is at least MinSecretLen bytes.
func ValidateSecret(secret []byte) error {
	if len(secret) < MinSecretLen {
		return ErrSecretTooShort
	}
	return nil
}

// LimitedReadAll reads at most maxBytes from r and fails if more is available.
func LimitedReadAll(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("horosafe: response exceeds %d bytes", maxBytes)
	}
	return data, nil
}
