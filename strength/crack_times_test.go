package strength

import (
	"math"
	"testing"
)

func TestDisplayTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "less than a second"},
		{0.5, "less than a second"},
		{1, "1 second"},
		{42, "42 seconds"},
		{90, "2 minutes"},
		{3600, "1 hour"},
		{86400, "1 day"},
		{86400 * 40, "1 month"},
		{86400 * 31 * 12 * 3, "3 years"},
		{1e12, "centuries"},
	}
	for _, tc := range cases {
		if got := DisplayTime(tc.seconds); got != tc.want {
			t.Fatalf("DisplayTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestCrackTimesProfiles(t *testing.T) {
	seconds, display := CrackTimes(1e10)

	if seconds[OfflineFastHashing] != 1 {
		t.Fatalf("expected 1 second for fast hashing, got %v", seconds[OfflineFastHashing])
	}
	if seconds[OfflineSlowHashing] != 1e6 {
		t.Fatalf("expected 1e6 seconds for slow hashing, got %v", seconds[OfflineSlowHashing])
	}
	if seconds[OnlineNoThrottling] != 1e9 {
		t.Fatalf("expected 1e9 seconds unthrottled, got %v", seconds[OnlineNoThrottling])
	}
	if display[OnlineThrottling] != "centuries" {
		t.Fatalf("expected centuries for throttled online attack, got %q", display[OnlineThrottling])
	}
	if display[OfflineFastHashing] != "1 second" {
		t.Fatalf("unexpected fast hashing display %q", display[OfflineFastHashing])
	}
}

func TestCrackTimesClampOverflow(t *testing.T) {
	seconds, display := CrackTimes(math.Inf(1))

	for profile, v := range seconds {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("%s: expected finite seconds, got %v", profile, v)
		}
		if display[profile] != "centuries" {
			t.Fatalf("%s: expected centuries, got %q", profile, display[profile])
		}
	}
	if seconds[OnlineThrottling] != math.MaxFloat64 {
		t.Fatalf("expected throttled seconds clamped to MaxFloat64, got %v", seconds[OnlineThrottling])
	}
}

func TestFinite(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{in: 42, want: 42},
		{in: math.Inf(1), want: math.MaxFloat64},
		{in: math.Inf(-1), want: 0},
		{in: math.NaN(), want: 0},
		{in: -3, want: 0},
	}
	for _, tc := range cases {
		if got := Finite(tc.in); got != tc.want {
			t.Fatalf("Finite(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFeedbackFor(t *testing.T) {
	fb := FeedbackFor(4, []Match{{Pattern: "bruteforce", Token: "x"}})
	if fb.Warning != "" || len(fb.Suggestions) != 0 {
		t.Fatalf("strong password should get no advice, got %+v", fb)
	}

	fb = FeedbackFor(0, nil)
	if len(fb.Suggestions) != 2 {
		t.Fatalf("expected default suggestions, got %+v", fb)
	}

	fb = FeedbackFor(1, []Match{
		{Pattern: "bruteforce", Token: "1"},
		{Pattern: "spatial", Token: "qwert"},
	})
	if fb.Warning != "Straight rows of keys are easy to guess." {
		t.Fatalf("expected spatial warning from longest match, got %q", fb.Warning)
	}
	if fb.Suggestions[0] != suggestAddWord {
		t.Fatalf("expected add-word suggestion first, got %v", fb.Suggestions)
	}
}
