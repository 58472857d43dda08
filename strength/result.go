package strength

// ScoreUnknown marks a result whose strength could not be estimated.
const ScoreUnknown = -1

// Attacker profiles used as crack-time keys.
const (
	OnlineThrottling   = "online_throttling_100_per_hour"
	OnlineNoThrottling = "online_no_throttling_10_per_second"
	OfflineSlowHashing = "offline_slow_hashing_1e4_per_second"
	OfflineFastHashing = "offline_fast_hashing_1e10_per_second"
)

// Match is one element of the pattern decomposition of a password.
type Match struct {
	Pattern        string `json:"pattern"`
	I              int    `json:"i"`
	J              int    `json:"j"`
	Token          string `json:"token"`
	DictionaryName string `json:"dictionary_name,omitempty"`
}

// Feedback is user-facing advice attached to an estimate.
type Feedback struct {
	Warning     string   `json:"warning"`
	Suggestions []string `json:"suggestions"`
}

// Estimate is the engine-native result.
type Estimate struct {
	Score             int                `json:"score"`
	Guesses           float64            `json:"guesses"`
	GuessesLog10      float64            `json:"guessesLog10"`
	Sequence          []Match            `json:"sequence"`
	CrackTimesSeconds map[string]float64 `json:"crackTimesSeconds"`
	CrackTimesDisplay map[string]string  `json:"crackTimesDisplay"`
	Feedback          Feedback           `json:"feedback"`
}

// Result is the compatibility result handed to callers.
type Result struct {
	Score             int                `json:"score"`
	Guesses           float64            `json:"guesses"`
	GuessesLog10      float64            `json:"guesses_log10"`
	Sequence          []Match            `json:"sequence"`
	CrackTimesSeconds map[string]float64 `json:"crack_times_seconds"`
	CrackTimesDisplay map[string]string  `json:"crack_times_display"`
	Feedback          Feedback           `json:"feedback"`
}

// FromEstimate remaps an engine estimate onto the compatibility field names.
// Nil collections become empty ones. Finite values are copied unchanged; infinities and NaN
// from a custom engine are clamped by Finite so the result stays encodable.
func FromEstimate(e Estimate) Result {
	r := Result{
		Score:             e.Score,
		Guesses:           Finite(e.Guesses),
		GuessesLog10:      Finite(e.GuessesLog10),
		Sequence:          append([]Match{}, e.Sequence...),
		CrackTimesSeconds: make(map[string]float64, len(e.CrackTimesSeconds)),
		CrackTimesDisplay: make(map[string]string, len(e.CrackTimesDisplay)),
		Feedback: Feedback{
			Warning:     e.Feedback.Warning,
			Suggestions: append([]string{}, e.Feedback.Suggestions...),
		},
	}
	for k, v := range e.CrackTimesSeconds {
		r.CrackTimesSeconds[k] = Finite(v)
	}
	for k, v := range e.CrackTimesDisplay {
		r.CrackTimesDisplay[k] = v
	}
	return r
}

// Unknown is the sentinel returned when estimation fails.
func Unknown() Result {
	return Result{
		Score:             ScoreUnknown,
		Sequence:          []Match{},
		CrackTimesSeconds: map[string]float64{},
		CrackTimesDisplay: map[string]string{},
		Feedback: Feedback{
			Suggestions: []string{},
		},
	}
}
