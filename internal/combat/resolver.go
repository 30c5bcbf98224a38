// Package combat implements damage resolution and turn-based encounter
// tracking. All randomness flows through an explicit *rand.Rand so
// outcomes are reproducible under a known seed.
package combat

import "math/rand"

// Probability constants for attack resolution.
const (
	critChance = 0.05
	missChance = 0.05

	// armorPerPoint is the damage shaved per point of armor.
	armorPerPoint = 0.5
	// maxMitigationShare caps mitigation at 75% of pre-mitigation damage.
	maxMitigationShare = 0.75

	// baselineStat is the neutral attribute score; STR above it adds
	// damage, below it subtracts.
	baselineStat = 10
)

// AttackInput carries everything needed to resolve one attack.
// Missing values are defaulted defensively: an absent STR stat counts
// as the baseline 10 and negative armor counts as 0.
type AttackInput struct {
	// AttackerLevel is the attacker's character level.
	AttackerLevel int
	// AttackerStats maps stat names (STR, DEX, ...) to scores.
	AttackerStats map[string]int
	// DamageMin and DamageMax bound the uniform base damage roll.
	DamageMin int
	DamageMax int
	// DefenderArmor is the defender's armor rating.
	DefenderArmor int
	// SkillBonus is a flat bonus from skills or equipment.
	SkillBonus int
}

// Outcome is the transient result of one attack resolution. It is
// embedded into the event that records the attack and never recomputed
// on replay.
type Outcome struct {
	// Damage is the final damage dealt; 0 on a miss, at least 1 on a hit.
	Damage int `json:"damage"`
	// WasCritical reports whether the base roll was doubled.
	WasCritical bool `json:"was_critical"`
	// WasMiss reports whether the attack missed entirely.
	WasMiss bool `json:"was_miss"`
	// ArmorMitigation is the damage removed by armor.
	ArmorMitigation int `json:"armor_mitigation"`
}

// ResolveAttack resolves a single attack. Draw order is fixed: base
// damage, crit, miss. Crit and miss are independent draws, but a miss
// discards the outcome before crit doubling is applied, so a miss always
// returns zero damage and no crit.
//
// ResolveAttack is pure apart from consuming rng; applying the damage to
// the defender and logging the event are the caller's responsibility.
func ResolveAttack(rng *rand.Rand, in AttackInput) Outcome {
	low, high := in.DamageMin, in.DamageMax
	if high < low {
		high = low
	}
	baseDamage := low
	if high > low {
		baseDamage = low + rng.Intn(high-low+1)
	}

	strBonus := 0
	if str, ok := in.AttackerStats["STR"]; ok {
		strBonus = str - baselineStat
	}

	critical := rng.Float64() < critChance
	miss := rng.Float64() < missChance
	if miss {
		return Outcome{WasMiss: true}
	}
	if critical {
		baseDamage *= 2
	}

	total := float64(baseDamage + strBonus + in.SkillBonus)

	armor := in.DefenderArmor
	if armor < 0 {
		armor = 0
	}
	mitigation := float64(armor) * armorPerPoint
	if limit := total * maxMitigationShare; mitigation > limit {
		mitigation = limit
	}
	if mitigation < 0 {
		mitigation = 0
	}

	damage := int(total - mitigation)
	if damage < 1 {
		damage = 1
	}

	return Outcome{
		Damage:          damage,
		WasCritical:     critical,
		ArmorMitigation: int(mitigation),
	}
}
