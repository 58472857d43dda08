package compat

import "github.com/MrEthical07/goStrength/strength"

// ScoreMismatch is returned when the confirmation does not match the password.
const ScoreMismatch = 5

// EngineSource yields the loaded estimation function, if any.
type EngineSource interface {
	Load() (strength.EstimateFunc, bool)
}

// Scorer rates a password without a loaded engine.
type Scorer func(password string, disallowed []string) int

// Meter is the always-available strength meter.
type Meter struct {
	engine   EngineSource
	fallback Scorer
}

// NewMeter returns a meter backed by engine. A nil fallback selects the heuristic scorer.
func NewMeter(engine EngineSource, fallback Scorer) *Meter {
	if fallback == nil {
		fallback = strength.Heuristic
	}
	return &Meter{engine: engine, fallback: fallback}
}

// Score rates password. A non-empty confirm that differs yields ScoreMismatch; otherwise
// the loaded engine's score is returned (ScoreUnknown if it failed), falling back to the
// heuristic while nothing is loaded.
func (m *Meter) Score(password string, disallowed []string, confirm string) int {
	if confirm != "" && confirm != password {
		return ScoreMismatch
	}
	if m.engine != nil {
		if fn, ok := m.engine.Load(); ok && fn != nil {
			return fn(password, disallowed).Score
		}
	}
	return m.fallback(password, disallowed)
}

// UsingEngine reports whether Score currently delegates to a loaded engine.
func (m *Meter) UsingEngine() bool {
	if m.engine == nil {
		return false
	}
	fn, ok := m.engine.Load()
	return ok && fn != nil
}

// Label returns the display label for a meter score.
func Label(score int) string {
	switch score {
	case 0, 1:
		return "short"
	case 2:
		return "bad"
	case 3:
		return "good"
	case 4:
		return "strong"
	case ScoreMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}
