package bundle

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const digestPrefix = "blake2b-256:"

// Digest returns the integrity pin for body.
func Digest(body []byte) string {
	sum := blake2b.Sum256(body)
	return digestPrefix + hex.EncodeToString(sum[:])
}

func parsePin(pin string) ([]byte, error) {
	pin = strings.TrimSpace(pin)
	if !strings.HasPrefix(pin, digestPrefix) {
		return nil, errors.New("digest must start with " + digestPrefix)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(pin, digestPrefix))
	if err != nil {
		return nil, fmt.Errorf("digest is not hex: %w", err)
	}
	if len(raw) != blake2b.Size256 {
		return nil, fmt.Errorf("digest must be %d bytes", blake2b.Size256)
	}
	return raw, nil
}

func verifyDigest(pin string, body []byte) error {
	want, err := parsePin(pin)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDigestMismatch, err)
	}
	got := blake2b.Sum256(body)
	if subtle.ConstantTimeCompare(want, got[:]) != 1 {
		return ErrDigestMismatch
	}
	return nil
}
