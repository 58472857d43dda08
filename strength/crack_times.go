package strength

import (
	"fmt"
	"math"
)

// Guesses per second for each attacker profile.
var attackRates = map[string]float64{
	OnlineThrottling:   100.0 / 3600.0,
	OnlineNoThrottling: 10,
	OfflineSlowHashing: 1e4,
	OfflineFastHashing: 1e10,
}

// CrackTimes returns the seconds and display strings for every attacker profile.
func CrackTimes(guesses float64) (map[string]float64, map[string]string) {
	seconds := make(map[string]float64, len(attackRates))
	display := make(map[string]string, len(attackRates))
	guesses = Finite(guesses)
	for profile, rate := range attackRates {
		s := Finite(guesses / rate)
		seconds[profile] = s
		display[profile] = DisplayTime(s)
	}
	return seconds, display
}

// DisplayTime renders a duration in seconds the way zxcvbn does.
func DisplayTime(seconds float64) string {
	const (
		minute  = 60.0
		hour    = minute * 60
		day     = hour * 24
		month   = day * 31
		year    = month * 12
		century = year * 100
	)

	switch {
	case seconds < 1:
		return "less than a second"
	case seconds < minute:
		return plural(seconds, 1, "second")
	case seconds < hour:
		return plural(seconds, minute, "minute")
	case seconds < day:
		return plural(seconds, hour, "hour")
	case seconds < month:
		return plural(seconds, day, "day")
	case seconds < year:
		return plural(seconds, month, "month")
	case seconds < century:
		return plural(seconds, year, "year")
	default:
		return "centuries"
	}
}

func plural(seconds, unit float64, name string) string {
	n := int64(math.Round(seconds / unit))
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}

// Finite clamps v into the range JSON can carry: NaN and negative values become zero and
// +Inf becomes math.MaxFloat64.
func Finite(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case math.IsInf(v, 1) || v > math.MaxFloat64:
		return math.MaxFloat64
	default:
		return v
	}
}
