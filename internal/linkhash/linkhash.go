// Package linkhash derives the per-recipient link tokens that name
// capability links.
//
// A token is the BLAKE3 keyed hash of identifier‖recipient, keyed with a
// key derived from the server secret, truncated to a configured number of
// bytes and encoded as unpadded URL-safe base64 so it can be used directly
// as a URL path segment. The same inputs always produce the same token,
// which lets unshare recompute the link name instead of reading it back.
//
// The identifier and recipient are concatenated without a separator.
// Tokens issued by existing stores depend on that exact input, so the
// encoding is kept as is; the keyed hash means a crafted collision still
// requires the secret.
package linkhash

import (
	"encoding/base64"
	"fmt"

	serrors "github.com/slinkshare/slink/internal/errors"

	"github.com/zeebo/blake3"
)

const (
	// MinLength and MaxLength bound the number of hash bytes kept in a token.
	MinLength = 2
	MaxLength = 32

	// DefaultLength keeps 56 bits of the hash.
	DefaultLength = 7

	// keyContext is the BLAKE3 key derivation context for the secret.
	keyContext = "slink"
)

var encoding = base64.RawURLEncoding

// Derive returns the link token for identifier and recipient.
func Derive(identifier, recipient, secret string, length int) (string, error) {
	if err := ValidateLength(length); err != nil {
		return "", err
	}
	if secret == "" {
		return "", fmt.Errorf("%w: hash secret is empty", serrors.ErrConfiguration)
	}

	var key [32]byte
	blake3.DeriveKey(keyContext, []byte(secret), key[:])

	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		return "", fmt.Errorf("%w: creating keyed hash: %w", serrors.ErrConfiguration, err)
	}
	_, _ = hasher.Write([]byte(identifier))
	_, _ = hasher.Write([]byte(recipient))

	sum := hasher.Sum(nil)
	return encoding.EncodeToString(sum[:length]), nil
}

// ValidateLength reports whether length is a supported token byte length.
func ValidateLength(length int) error {
	if length < MinLength || length > MaxLength {
		return fmt.Errorf("%w: hash length %d outside %d-%d", serrors.ErrConfiguration, length, MinLength, MaxLength)
	}
	return nil
}

// EncodedLen returns the number of characters in a token of length bytes.
func EncodedLen(length int) int {
	return encoding.EncodedLen(length)
}
