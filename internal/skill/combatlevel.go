package skill

import "math"

// Combat skill names used by the combat-level aggregate.
const (
	skillAttack    = "Attack"
	skillStrength  = "Strength"
	skillDefence   = "Defence"
	skillHitpoints = "Hitpoints"
	skillRanged    = "Ranged"
	skillMagic     = "Magic"
	skillPrayer    = "Prayer"
)

// CombatLevel aggregates combat skills into a single level:
//
//	base  = 0.25 * (Defence + Hitpoints + floor(Prayer/2))
//	melee = 0.325 * (Attack + Strength)
//	range = 0.325 * (floor(Ranged/2) + Ranged)
//	magic = 0.325 * (floor(Magic/2) + Magic)
//	combat_level = floor(base + max(melee, range, magic))
//
// Missing skills default to level 1, except Hitpoints which defaults to
// its starting level of 10.
func CombatLevel(skills map[string]Skill) int {
	level := func(name string) int {
		if s, ok := skills[name]; ok {
			return s.Level
		}
		if name == skillHitpoints {
			return hitpointsStartLevel
		}
		return 1
	}

	base := 0.25 * float64(level(skillDefence)+level(skillHitpoints)+level(skillPrayer)/2)
	melee := 0.325 * float64(level(skillAttack)+level(skillStrength))
	ranged := 0.325 * float64(level(skillRanged)/2+level(skillRanged))
	magic := 0.325 * float64(level(skillMagic)/2+level(skillMagic))

	return int(math.Floor(base + math.Max(melee, math.Max(ranged, magic))))
}

// TotalLevel sums all skill levels.
func TotalLevel(skills map[string]Skill) int {
	total := 0
	for _, s := range skills {
		total += s.Level
	}
	return total
}
