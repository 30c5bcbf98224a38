package skill

import "math/rand"

// Action is a repeatable training activity that grants XP on success.
type Action struct {
	// SkillName is the skill the action trains.
	SkillName string `json:"skill_name"`
	// Name identifies the action (e.g. "mine_iron").
	Name string `json:"action_name"`
	// BaseXP is the XP granted per successful attempt.
	BaseXP int `json:"base_xp"`
	// LevelRequired gates the action behind a minimum skill level.
	LevelRequired int `json:"level_required"`
	// SuccessRateBase is the success chance at the required level.
	SuccessRateBase float64 `json:"success_rate_base"`
	// Product is the item produced on success.
	Product string `json:"product"`
}

// actionRatePerLevel is the success-rate gain per level above the
// action's requirement, capped at maxSuccessRate.
const actionRatePerLevel = 0.02

// Actions is the training-action catalog, keyed by skill then action name.
var Actions = map[string]map[string]Action{
	"Mining": {
		"mine_copper":  {SkillName: "Mining", Name: "mine_copper", BaseXP: 17, LevelRequired: 1, SuccessRateBase: 0.8, Product: "copper_ore"},
		"mine_iron":    {SkillName: "Mining", Name: "mine_iron", BaseXP: 35, LevelRequired: 15, SuccessRateBase: 0.6, Product: "iron_ore"},
		"mine_mithril": {SkillName: "Mining", Name: "mine_mithril", BaseXP: 80, LevelRequired: 55, SuccessRateBase: 0.5, Product: "mithril_ore"},
	},
	"Woodcutting": {
		"cut_tree":  {SkillName: "Woodcutting", Name: "cut_tree", BaseXP: 25, LevelRequired: 1, SuccessRateBase: 0.8, Product: "logs"},
		"cut_oak":   {SkillName: "Woodcutting", Name: "cut_oak", BaseXP: 37, LevelRequired: 15, SuccessRateBase: 0.7, Product: "oak_logs"},
		"cut_magic": {SkillName: "Woodcutting", Name: "cut_magic", BaseXP: 250, LevelRequired: 75, SuccessRateBase: 0.4, Product: "magic_logs"},
	},
	"Fishing": {
		"catch_shrimp": {SkillName: "Fishing", Name: "catch_shrimp", BaseXP: 10, LevelRequired: 1, SuccessRateBase: 0.9, Product: "raw_shrimp"},
		"catch_salmon": {SkillName: "Fishing", Name: "catch_salmon", BaseXP: 50, LevelRequired: 30, SuccessRateBase: 0.6, Product: "raw_salmon"},
		"catch_shark":  {SkillName: "Fishing", Name: "catch_shark", BaseXP: 110, LevelRequired: 76, SuccessRateBase: 0.3, Product: "raw_shark"},
	},
}

// LookupAction finds an action in the catalog.
func LookupAction(skillName, actionName string) (Action, bool) {
	actions, ok := Actions[skillName]
	if !ok {
		return Action{}, false
	}
	action, ok := actions[actionName]
	return action, ok
}

// ActionSuccessRate computes the success chance for a skill level
// performing the action: the base rate plus 2% per level above the
// requirement, capped at 95%.
func ActionSuccessRate(action Action, level int) float64 {
	rate := action.SuccessRateBase + float64(level-action.LevelRequired)*actionRatePerLevel
	if rate > maxSuccessRate {
		return maxSuccessRate
	}
	if rate < 0 {
		return 0
	}
	return rate
}

// ActionOutcome summarizes a batch of action attempts.
type ActionOutcome struct {
	// Attempts is how many attempts were made.
	Attempts int `json:"attempts"`
	// Successes is how many attempts succeeded.
	Successes int `json:"successes"`
	// XPGained is the total XP earned across successes.
	XPGained int `json:"xp_gained"`
	// Produced lists one product item per success.
	Produced []string `json:"produced,omitempty"`
}

// PerformAction attempts the action quantity times at the given level,
// drawing one uniform roll per attempt.
func PerformAction(rng *rand.Rand, action Action, level, quantity int) ActionOutcome {
	outcome := ActionOutcome{Attempts: quantity}
	rate := ActionSuccessRate(action, level)
	for i := 0; i < quantity; i++ {
		if rng.Float64() < rate {
			outcome.Successes++
			outcome.XPGained += action.BaseXP
			outcome.Produced = append(outcome.Produced, action.Product)
		}
	}
	return outcome
}
