package strength

import "testing"

func TestZxcvbnCommonPasswordIsWeak(t *testing.T) {
	est, err := Zxcvbn()("password", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Score > 1 {
		t.Fatalf("expected a weak score for a common password, got %d", est.Score)
	}
	if len(est.Sequence) == 0 {
		t.Fatal("expected a pattern decomposition")
	}
	if est.Feedback.Warning == "" && len(est.Feedback.Suggestions) == 0 {
		t.Fatal("expected feedback for a weak password")
	}
}

func TestZxcvbnRandomPasswordIsStrong(t *testing.T) {
	est, err := Zxcvbn()("aV3#k9!Qz7$mLp2&Xw", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Score < 3 {
		t.Fatalf("expected a strong score, got %d", est.Score)
	}
	if est.GuessesLog10 <= 10 {
		t.Fatalf("expected a large search space, got log10 %v", est.GuessesLog10)
	}
	if len(est.CrackTimesDisplay) != 4 {
		t.Fatalf("expected four crack-time profiles, got %v", est.CrackTimesDisplay)
	}
}

func TestZxcvbnUserInputsNeverIncreaseGuesses(t *testing.T) {
	engine := Zxcvbn()
	without, _ := engine("johnsmithxq", nil)
	with, _ := engine("johnsmithxq", []string{"johnsmith"})

	if with.GuessesLog10 > without.GuessesLog10 {
		t.Fatalf("user inputs increased guesses: %v > %v", with.GuessesLog10, without.GuessesLog10)
	}
}

func TestZxcvbnThroughWrap(t *testing.T) {
	res := Wrap(Zxcvbn(), nil, nil)("password", []string{"ab"})
	if res.Score < 0 || res.Score > 4 {
		t.Fatalf("expected a real score, got %d", res.Score)
	}
}
