package skill

import (
	"math"
	"math/rand"
)

// Check probability bounds. Success rate is clamped so no check is ever
// guaranteed or impossible, and the extreme 5% of rolls crit either way.
const (
	minSuccessRate   = 0.05
	maxSuccessRate   = 0.95
	critSuccessRoll  = 0.05
	critFailureRoll  = 0.95
	ratePerLevelDiff = 0.05
)

// SuccessRate computes the chance of a progressive check succeeding:
// 50% at equal level, ±5% per level of difference, clamped to [5%, 95%].
func SuccessRate(level, difficulty int) float64 {
	rate := 0.5 + float64(level-difficulty)*ratePerLevelDiff
	return math.Max(minSuccessRate, math.Min(maxSuccessRate, rate))
}

// CheckResult is the outcome of a progressive skill check.
type CheckResult struct {
	// SkillName is the skill that was checked.
	SkillName string `json:"skill_name"`
	// Difficulty is the difficulty level the check was made against.
	Difficulty int `json:"difficulty"`
	// CharacterLevel is the skill level at check time.
	CharacterLevel int `json:"character_level"`
	// SuccessRate is the computed success probability.
	SuccessRate float64 `json:"success_rate"`
	// Roll is the uniform draw scaled to [0, 100).
	Roll int `json:"roll"`
	// Success reports whether the check passed.
	Success bool `json:"success"`
	// Margin is round((SuccessRate - roll) * 100): positive on success.
	Margin int `json:"margin"`
	// CriticalSuccess is set when the roll is in the bottom 5% and passes.
	CriticalSuccess bool `json:"critical_success"`
	// CriticalFailure is set when the roll is in the top 5% and fails.
	CriticalFailure bool `json:"critical_failure"`
}

// RunCheck performs a progressive skill check for the given skill level
// against a difficulty, drawing one uniform roll from rng.
func RunCheck(rng *rand.Rand, skillName string, level, difficulty int) CheckResult {
	rate := SuccessRate(level, difficulty)
	roll := rng.Float64()

	success := roll < rate
	return CheckResult{
		SkillName:       skillName,
		Difficulty:      difficulty,
		CharacterLevel:  level,
		SuccessRate:     rate,
		Roll:            int(roll * 100),
		Success:         success,
		Margin:          int(math.Round((rate - roll) * 100)),
		CriticalSuccess: roll < critSuccessRoll && success,
		CriticalFailure: roll > critFailureRoll && !success,
	}
}
