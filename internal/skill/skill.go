// Package skill implements RuneScape-style progressive skill leveling:
// an exponential cumulative XP curve, tier-gated content brackets, and
// level-scaled skill checks.
package skill

// Category groups skills for organization.
type Category string

const (
	CategoryCombat    Category = "combat"
	CategoryGathering Category = "gathering"
	CategoryArtisan   Category = "artisan"
	CategorySupport   Category = "support"
	CategoryMagic     Category = "magic"
	CategoryCrafting  Category = "crafting"
)

// LevelCap is the maximum attainable skill level.
const LevelCap = 120

// Skill is a single trainable skill on a character.
type Skill struct {
	// Name is the skill name (e.g. "Mining").
	Name string `json:"name"`
	// Level is the current level in [1, LevelCap].
	Level int `json:"level"`
	// XP is the total experience earned in this skill.
	XP int `json:"xp"`
	// Category groups the skill for display.
	Category Category `json:"category"`
}

// DefaultSkills maps every trainable skill to its category.
var DefaultSkills = map[string]Category{
	// Combat
	"Attack":    CategoryCombat,
	"Strength":  CategoryCombat,
	"Defence":   CategoryCombat,
	"Ranged":    CategoryCombat,
	"Magic":     CategoryMagic,
	"Hitpoints": CategoryCombat,
	"Prayer":    CategorySupport,
	"Slayer":    CategoryCombat,

	// Gathering
	"Mining":      CategoryGathering,
	"Fishing":     CategoryGathering,
	"Woodcutting": CategoryGathering,
	"Hunter":      CategoryGathering,
	"Farming":     CategoryGathering,

	// Artisan
	"Smithing":     CategoryArtisan,
	"Cooking":      CategoryArtisan,
	"Firemaking":   CategoryArtisan,
	"Construction": CategoryArtisan,
	"Crafting":     CategoryCrafting,
	"Fletching":    CategoryCrafting,
	"Herblore":     CategoryCrafting,
	"Runecrafting": CategoryMagic,
	"Summoning":    CategoryMagic,

	// Support
	"Agility":       CategorySupport,
	"Thieving":      CategorySupport,
	"Dungeoneering": CategorySupport,
}

// hitpointsStartLevel is the starting level for the Hitpoints skill.
const hitpointsStartLevel = 10

// NewSkill creates a skill at its starting level. Hitpoints starts at
// level 10 with matching XP; everything else starts at level 1 with 0 XP.
func NewSkill(name string, category Category) Skill {
	level := 1
	if name == "Hitpoints" {
		level = hitpointsStartLevel
	}
	return Skill{
		Name:     name,
		Level:    level,
		XP:       XPForLevel(level),
		Category: category,
	}
}

// NewDefaultSet creates the full default skill set for a fresh character.
func NewDefaultSet() map[string]Skill {
	skills := make(map[string]Skill, len(DefaultSkills))
	for name, category := range DefaultSkills {
		skills[name] = NewSkill(name, category)
	}
	return skills
}

// Tier is a named capability bracket unlocked at a skill level.
type Tier struct {
	// Name is the tier name (bronze, iron, ...).
	Name string `json:"name"`
	// LevelRequired is the level that unlocks the tier.
	LevelRequired int `json:"level_required"`
	// Multiplier is the effectiveness multiplier for tier content.
	Multiplier float64 `json:"multiplier"`
}

// Tiers is the full tier catalog, ascending by level requirement. The
// catalog carries the rune entry used by content and item definitions;
// TierFor uses its own brackets, which jump straight to dragon at 90.
var Tiers = []Tier{
	{Name: "bronze", LevelRequired: 1, Multiplier: 1.0},
	{Name: "iron", LevelRequired: 15, Multiplier: 1.2},
	{Name: "steel", LevelRequired: 30, Multiplier: 1.4},
	{Name: "mithril", LevelRequired: 50, Multiplier: 1.6},
	{Name: "adamant", LevelRequired: 70, Multiplier: 1.8},
	{Name: "rune", LevelRequired: 90, Multiplier: 2.0},
	{Name: "dragon", LevelRequired: 99, Multiplier: 2.5},
}

// tierBrackets maps skill levels to the reported capability bracket.
var tierBrackets = []Tier{
	{Name: "bronze", LevelRequired: 1},
	{Name: "iron", LevelRequired: 15},
	{Name: "steel", LevelRequired: 30},
	{Name: "mithril", LevelRequired: 50},
	{Name: "adamant", LevelRequired: 70},
	{Name: "dragon", LevelRequired: 90},
}

// TierFor returns the tier name for a skill level.
func TierFor(level int) string {
	name := tierBrackets[0].Name
	for _, tier := range tierBrackets {
		if level >= tier.LevelRequired {
			name = tier.Name
		}
	}
	return name
}

// Tier returns the skill's current tier name.
func (s Skill) Tier() string {
	return TierFor(s.Level)
}

// Bonus is the flat skill-check modifier granted by level: +1 per 10
// levels, up to +12 at the cap.
func (s Skill) Bonus() int {
	return s.Level / 10
}

// CanAccess reports whether the skill meets a level requirement.
func (s Skill) CanAccess(requiredLevel int) bool {
	return s.Level >= requiredLevel
}
