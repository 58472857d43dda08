package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Manifest selects the estimation engine delivered by a bundle.
type Manifest struct {
	Engine     string   `json:"engine"`
	Version    string   `json:"version,omitempty"`
	Dictionary []string `json:"dictionary,omitempty"`
}

// Decode verifies body against cfg and returns its manifest. The integrity pin is
// checked first, then the body is parsed as a raw manifest or a signed token.
func Decode(body []byte, cfg Config) (Manifest, error) {
	if cfg.Pinned() {
		if err := verifyDigest(cfg.Digest, body); err != nil {
			return Manifest{}, err
		}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Manifest{}, fmt.Errorf("%w: empty body", ErrMalformed)
	}

	var (
		m   Manifest
		err error
	)
	if trimmed[0] == '{' {
		if cfg.RequireSignature {
			return Manifest{}, ErrUnsigned
		}
		m, err = decodeJSON(trimmed)
	} else {
		m, err = parseSigned(string(trimmed), cfg)
	}
	if err != nil {
		return Manifest{}, err
	}

	return normalize(m, cfg)
}

func decodeJSON(body []byte) (Manifest, error) {
	var m Manifest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return m, nil
}

func normalize(m Manifest, cfg Config) (Manifest, error) {
	m.Engine = strings.ToLower(strings.TrimSpace(m.Engine))
	if m.Engine == "" {
		return Manifest{}, fmt.Errorf("%w: engine is required", ErrMalformed)
	}
	if cfg.MaxDictionaryWords > 0 && len(m.Dictionary) > cfg.MaxDictionaryWords {
		return Manifest{}, fmt.Errorf("%w: dictionary has %d words, limit %d", ErrMalformed, len(m.Dictionary), cfg.MaxDictionaryWords)
	}
	return m, nil
}
