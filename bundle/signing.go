package bundle

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type manifestClaims struct {
	Engine     string   `json:"engine"`
	Version    string   `json:"version,omitempty"`
	Dictionary []string `json:"dictionary,omitempty"`
	jwt.RegisteredClaims
}

// Sign issues a signed manifest token. For MethodHS256 key is the shared secret; for
// MethodEd25519 it is the private key, raw or PEM encoded.
func Sign(m Manifest, method SigningMethod, key []byte, issuer string) (string, error) {
	claims := manifestClaims{
		Engine:     m.Engine,
		Version:    m.Version,
		Dictionary: m.Dictionary,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   issuer,
		},
	}

	var (
		signingMethod jwt.SigningMethod
		signKey       any
	)
	switch method {
	case MethodHS256:
		if len(key) == 0 {
			return "", errors.New("hs256 requires a shared secret")
		}
		signingMethod, signKey = jwt.SigningMethodHS256, key
	case MethodEd25519:
		pk, err := parseEdPrivateKey(key)
		if err != nil {
			return "", err
		}
		signingMethod, signKey = jwt.SigningMethodEdDSA, pk
	default:
		return "", fmt.Errorf("unsupported signing method %q", method)
	}

	return jwt.NewWithClaims(signingMethod, claims).SignedString(signKey)
}

func parseSigned(token string, cfg Config) (Manifest, error) {
	if !cfg.Signed() {
		return Manifest{}, fmt.Errorf("%w: signed manifest but no verification key configured", ErrSignature)
	}

	method := methodFor(cfg.SigningMethod)
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{method.Alg()}),
	}
	if cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(cfg.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &manifestClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return verifyKey(cfg)
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Manifest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return Manifest{}, fmt.Errorf("%w: %v", ErrSignature, err)
	}

	claims, ok := parsed.Claims.(*manifestClaims)
	if !ok || !parsed.Valid {
		return Manifest{}, ErrSignature
	}
	return Manifest{
		Engine:     claims.Engine,
		Version:    claims.Version,
		Dictionary: claims.Dictionary,
	}, nil
}

func methodFor(m SigningMethod) jwt.SigningMethod {
	switch m {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func verifyKey(cfg Config) (interface{}, error) {
	switch cfg.SigningMethod {
	case MethodHS256:
		return cfg.PrivateKey, nil
	default:
		return parseEdPublicKey(cfg.PublicKey)
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
