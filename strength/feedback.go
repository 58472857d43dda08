package strength

const (
	suggestAddWord     = "Add another word or two. Uncommon words are better."
	suggestFewWords    = "Use a few words, avoid common phrases."
	suggestNoNeed      = "No need for symbols, digits, or uppercase letters."
	suggestLongerKeys  = "Use a longer keyboard pattern with more turns."
	suggestAvoidRepeat = "Avoid repeated words and characters."
	suggestAvoidSeq    = "Avoid sequences."
	suggestAvoidDates  = "Avoid dates and years that are associated with you."
)

// FeedbackFor derives user-facing advice from the score and the pattern decomposition.
// Strong passwords get no advice.
func FeedbackFor(score int, sequence []Match) Feedback {
	if len(sequence) == 0 {
		return Feedback{Suggestions: []string{suggestFewWords, suggestNoNeed}}
	}
	if score > 2 {
		return Feedback{Suggestions: []string{}}
	}

	longest := sequence[0]
	for _, m := range sequence[1:] {
		if len(m.Token) > len(longest.Token) {
			longest = m
		}
	}

	fb := matchFeedback(longest, len(sequence) == 1)
	fb.Suggestions = append([]string{suggestAddWord}, fb.Suggestions...)
	return fb
}

func matchFeedback(m Match, sole bool) Feedback {
	switch m.Pattern {
	case "dictionary":
		switch {
		case m.DictionaryName == "passwords" || m.DictionaryName == "Passwords":
			return Feedback{Warning: "This is similar to a commonly used password."}
		case m.DictionaryName == "UserInputs" || m.DictionaryName == "user_inputs":
			return Feedback{Warning: "This password contains personal information."}
		case sole:
			return Feedback{Warning: "A word by itself is easy to guess."}
		default:
			return Feedback{}
		}
	case "spatial":
		return Feedback{Warning: "Straight rows of keys are easy to guess.", Suggestions: []string{suggestLongerKeys}}
	case "repeat":
		return Feedback{Warning: "Repeated characters like \"aaa\" are easy to guess.", Suggestions: []string{suggestAvoidRepeat}}
	case "sequence":
		return Feedback{Warning: "Sequences like \"abc\" or \"6543\" are easy to guess.", Suggestions: []string{suggestAvoidSeq}}
	case "date":
		return Feedback{Warning: "Dates are easy to guess.", Suggestions: []string{suggestAvoidDates}}
	default:
		return Feedback{}
	}
}
