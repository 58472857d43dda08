package strength

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// MinInputLength is the shortest user input that is passed to an engine. Shorter
// words cause too many false positives.
const MinInputLength = 4

// ErrEstimation wraps any failure raised by an engine.
var ErrEstimation = errors.New("strength: estimation failed")

// Engine estimates a password against user-specific inputs.
type Engine func(password string, userInputs []string) (Estimate, error)

// EstimateFunc is the capability installed once an engine is loaded. It never fails;
// failures surface as [Unknown].
type EstimateFunc func(password string, userInputs []string) Result

// Score is a convenience for callers that only need the integer score.
func (f EstimateFunc) Score(password string, userInputs []string) int {
	return f(password, userInputs).Score
}

// FilterInputs drops inputs shorter than MinInputLength characters.
func FilterInputs(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if utf8.RuneCountInString(in) >= MinInputLength {
			out = append(out, in)
		}
	}
	return out
}

// Wrap turns an engine into an EstimateFunc. User inputs are filtered, extra inputs
// (such as a bundle dictionary) are appended, and engine errors or panics are passed
// to report and replaced by the unknown sentinel.
func Wrap(engine Engine, report func(error), extraInputs []string) EstimateFunc {
	extra := FilterInputs(extraInputs)
	return func(password string, userInputs []string) (res Result) {
		defer func() {
			if r := recover(); r != nil {
				if report != nil {
					report(fmt.Errorf("%w: %v", ErrEstimation, r))
				}
				res = Unknown()
			}
		}()

		if engine == nil {
			if report != nil {
				report(fmt.Errorf("%w: no engine", ErrEstimation))
			}
			return Unknown()
		}

		inputs := append(FilterInputs(userInputs), extra...)
		est, err := engine(password, inputs)
		if err != nil {
			if report != nil {
				report(fmt.Errorf("%w: %v", ErrEstimation, err))
			}
			return Unknown()
		}
		return FromEstimate(est)
	}
}
