package skill

import (
	"math"
	"math/rand"
	"testing"
)

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		level      int
		difficulty int
		want       float64
	}{
		{10, 10, 0.5},
		{15, 10, 0.75},
		{10, 15, 0.25},
		{120, 1, 0.95},  // clamped high
		{1, 120, 0.05},  // clamped low
		{19, 10, 0.95},  // exactly at clamp
	}
	for _, tt := range tests {
		got := SuccessRate(tt.level, tt.difficulty)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("SuccessRate(%d, %d) = %f, want %f", tt.level, tt.difficulty, got, tt.want)
		}
	}
}

func TestRunCheck_Deterministic(t *testing.T) {
	first := RunCheck(rand.New(rand.NewSource(7)), "Thieving", 20, 15)
	second := RunCheck(rand.New(rand.NewSource(7)), "Thieving", 20, 15)
	if first != second {
		t.Fatalf("same seed produced different results: %+v vs %+v", first, second)
	}
}

func TestRunCheck_Fields(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	result := RunCheck(rng, "Agility", 30, 25)

	if result.SkillName != "Agility" || result.CharacterLevel != 30 || result.Difficulty != 25 {
		t.Fatalf("unexpected identity fields: %+v", result)
	}
	if math.Abs(result.SuccessRate-0.75) > 1e-9 {
		t.Fatalf("success rate = %f, want 0.75", result.SuccessRate)
	}
	if result.Roll < 0 || result.Roll >= 100 {
		t.Fatalf("roll = %d, want in [0, 100)", result.Roll)
	}
}

func TestRunCheck_CriticalsRequireMatchingOutcome(t *testing.T) {
	// Sweep seeds: a critical success must coincide with success and a
	// critical failure with failure, never the other way around.
	for seed := int64(0); seed < 200; seed++ {
		result := RunCheck(rand.New(rand.NewSource(seed)), "Slayer", 10, 10)
		if result.CriticalSuccess && !result.Success {
			t.Fatalf("seed %d: critical success without success: %+v", seed, result)
		}
		if result.CriticalFailure && result.Success {
			t.Fatalf("seed %d: critical failure with success: %+v", seed, result)
		}
		if result.Success && result.Margin < 0 {
			t.Fatalf("seed %d: success with negative margin: %+v", seed, result)
		}
	}
}

func TestRunCheck_ClampedRatesStillResolve(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	hopeless := RunCheck(rng, "Herblore", 1, 120)
	if math.Abs(hopeless.SuccessRate-0.05) > 1e-9 {
		t.Fatalf("hopeless rate = %f, want 0.05", hopeless.SuccessRate)
	}
	trivial := RunCheck(rng, "Herblore", 120, 1)
	if math.Abs(trivial.SuccessRate-0.95) > 1e-9 {
		t.Fatalf("trivial rate = %f, want 0.95", trivial.SuccessRate)
	}
}
