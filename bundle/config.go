package bundle

import (
	"fmt"
	"strings"
)

// SigningMethod selects how signed manifests are verified.
type SigningMethod string

const (
	// MethodNone accepts raw JSON manifests only.
	MethodNone SigningMethod = ""
	// MethodHS256 verifies HMAC-SHA256 tokens; PrivateKey holds the shared secret.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 verifies EdDSA tokens with PublicKey.
	MethodEd25519 SigningMethod = "ed25519"
)

// Config controls bundle verification.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	// Issuer, when set, must match the token's iss claim.
	Issuer string
	// Digest pins the raw body, formatted as "blake2b-256:<hex>".
	Digest           string
	RequireSignature bool
	// MaxDictionaryWords caps the extra inputs a manifest may carry. Zero means no cap.
	MaxDictionaryWords int
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	switch c.SigningMethod {
	case MethodNone:
		if c.RequireSignature {
			return fmt.Errorf("%w: RequireSignature needs a signing method", ErrInvalidConfig)
		}
	case MethodHS256:
		if len(c.PrivateKey) == 0 {
			return fmt.Errorf("%w: hs256 requires a shared secret", ErrInvalidConfig)
		}
	case MethodEd25519:
		if len(c.PublicKey) == 0 {
			return fmt.Errorf("%w: ed25519 requires a public key", ErrInvalidConfig)
		}
		if _, err := parseEdPublicKey(c.PublicKey); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unsupported signing method %q", ErrInvalidConfig, c.SigningMethod)
	}
	if c.Digest != "" {
		if _, err := parsePin(c.Digest); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if c.MaxDictionaryWords < 0 {
		return fmt.Errorf("%w: MaxDictionaryWords must be >= 0", ErrInvalidConfig)
	}
	return nil
}

// Signed reports whether the configuration verifies signed manifests.
func (c Config) Signed() bool {
	return c.SigningMethod != MethodNone
}

// Pinned reports whether an integrity digest is configured.
func (c Config) Pinned() bool {
	return strings.TrimSpace(c.Digest) != ""
}
