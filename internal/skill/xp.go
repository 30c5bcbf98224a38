package skill

import "math"

// XPForLevel returns the cumulative XP required to reach level.
//
// The curve is the classic RuneScape formula
//
//	sum for lvl in [1, level-1] of floor((lvl + 300 * 2^(lvl/7)) / 4)
//
// with XPForLevel(1) == 0. It is strictly increasing and super-linear:
// early levels cost a handful of XP, level 99 costs roughly 13 million.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level > LevelCap {
		level = LevelCap
	}
	total := 0
	for lvl := 1; lvl < level; lvl++ {
		total += int((float64(lvl) + 300*math.Pow(2, float64(lvl)/7.0)) / 4)
	}
	return total
}

// XPToNext returns the XP still needed for the next level, 0 at the cap.
func (s Skill) XPToNext() int {
	if s.Level >= LevelCap {
		return 0
	}
	remaining := XPForLevel(s.Level+1) - s.XP
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProgressToNext returns the fraction of the current level completed,
// in [0, 1]. At the level cap it reports 1.
func (s Skill) ProgressToNext() float64 {
	if s.Level >= LevelCap {
		return 1.0
	}
	currentLevelXP := XPForLevel(s.Level)
	nextLevelXP := XPForLevel(s.Level + 1)
	needed := nextLevelXP - currentLevelXP
	if needed <= 0 {
		return 0
	}
	progress := float64(s.XP-currentLevelXP) / float64(needed)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

// LevelUp records a single level gained while applying XP.
type LevelUp struct {
	// Skill is the skill name.
	Skill string `json:"skill"`
	// NewLevel is the level reached.
	NewLevel int `json:"new_level"`
	// Tier is the tier at the new level.
	Tier string `json:"tier"`
	// Bonus is the skill-check bonus at the new level.
	Bonus int `json:"bonus"`
}

// Gain is the outcome of applying XP to a skill.
type Gain struct {
	// NewLevel is the skill level after the gain.
	NewLevel int `json:"new_level"`
	// NewXP is the total XP after the gain.
	NewXP int `json:"new_xp"`
	// LevelUps lists every level gained, in order.
	LevelUps []LevelUp `json:"level_ups"`
}

// AddXP applies amount to the skill and runs the level-up loop to
// fixpoint. The loop terminates because XPForLevel strictly increases
// and the level is capped at LevelCap. Negative amounts are ignored;
// levels never go down.
func AddXP(s Skill, amount int) (Skill, Gain) {
	if amount > 0 {
		s.XP += amount
	}

	var levelUps []LevelUp
	for s.Level < LevelCap && s.XP >= XPForLevel(s.Level+1) {
		s.Level++
		levelUps = append(levelUps, LevelUp{
			Skill:    s.Name,
			NewLevel: s.Level,
			Tier:     s.Tier(),
			Bonus:    s.Bonus(),
		})
	}

	return s, Gain{
		NewLevel: s.Level,
		NewXP:    s.XP,
		LevelUps: levelUps,
	}
}
