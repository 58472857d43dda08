package strength

import (
	"math"

	"github.com/nbutton23/zxcvbn-go"
)

// Zxcvbn returns the dictionary and pattern matching engine. Guesses are derived from
// the minimum-entropy decomposition: guesses = 2^entropy.
func Zxcvbn() Engine {
	return func(password string, userInputs []string) (Estimate, error) {
		m := zxcvbn.PasswordStrength(password, userInputs)

		seq := make([]Match, 0, len(m.MatchSequence))
		for _, mm := range m.MatchSequence {
			seq = append(seq, Match{
				Pattern:        mm.Pattern,
				I:              mm.I,
				J:              mm.J,
				Token:          mm.Token,
				DictionaryName: mm.DictionaryName,
			})
		}

		log10 := Finite(m.Entropy * math.Log10(2))
		guesses := Finite(math.Pow(2, m.Entropy))
		seconds, display := CrackTimes(guesses)

		return Estimate{
			Score:             m.Score,
			Guesses:           guesses,
			GuessesLog10:      log10,
			Sequence:          seq,
			CrackTimesSeconds: seconds,
			CrackTimesDisplay: display,
			Feedback:          FeedbackFor(m.Score, seq),
		}, nil
	}
}
