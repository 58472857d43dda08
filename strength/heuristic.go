package strength

import (
	"math"
	"strings"
	"unicode/utf8"
)

var commonPasswords = []string{"password", "123456", "123456789", "qwerty", "abc123"}

// Heuristic is the fallback scorer used while no engine is loaded. It rewards length and
// character variety and penalizes disallowed words, single-class passwords, and common
// passwords. The result is always in 0..4.
func Heuristic(password string, disallowed []string) int {
	if password == "" {
		return 0
	}

	score := 0
	n := utf8.RuneCountInString(password)
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}

	classes := charClasses(password)
	if classes.count() >= 3 {
		score++
	}
	if classes.count() >= 4 {
		score++
	}

	lower := strings.ToLower(password)
	for _, word := range disallowed {
		if utf8.RuneCountInString(word) < MinInputLength {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			score = max(0, score-1)
		}
	}

	if classes.digitsOnly() {
		score = max(0, score-1)
	}
	if classes.lettersOnly() {
		score = max(0, score-1)
	}

	for _, common := range commonPasswords {
		if strings.Contains(lower, common) {
			score = 0
			break
		}
	}

	return min(4, max(0, score))
}

// HeuristicEngine exposes Heuristic as an Engine so a bundle can select it. Guesses are
// the brute-force search space of the password's character classes.
func HeuristicEngine() Engine {
	return func(password string, userInputs []string) (Estimate, error) {
		score := Heuristic(password, userInputs)
		n := utf8.RuneCountInString(password)

		log10 := 0.0
		if n > 0 {
			log10 = float64(n) * math.Log10(float64(charClasses(password).charset()))
		}
		guesses := Finite(math.Pow(10, log10))

		seq := []Match{}
		if n > 0 {
			seq = append(seq, Match{Pattern: "bruteforce", I: 0, J: n - 1, Token: password})
		}

		seconds, display := CrackTimes(guesses)
		return Estimate{
			Score:             score,
			Guesses:           guesses,
			GuessesLog10:      log10,
			Sequence:          seq,
			CrackTimesSeconds: seconds,
			CrackTimesDisplay: display,
			Feedback:          FeedbackFor(score, seq),
		}, nil
	}
}

type classSet struct {
	lower, upper, digit, other bool
}

func charClasses(s string) classSet {
	var c classSet
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		default:
			c.other = true
		}
	}
	return c
}

func (c classSet) count() int {
	n := 0
	for _, b := range []bool{c.lower, c.upper, c.digit, c.other} {
		if b {
			n++
		}
	}
	return n
}

func (c classSet) digitsOnly() bool {
	return c.digit && !c.lower && !c.upper && !c.other
}

func (c classSet) lettersOnly() bool {
	return (c.lower || c.upper) && !c.digit && !c.other
}

func (c classSet) charset() int {
	size := 0
	if c.lower {
		size += 26
	}
	if c.upper {
		size += 26
	}
	if c.digit {
		size += 10
	}
	if c.other {
		size += 33
	}
	return size
}
