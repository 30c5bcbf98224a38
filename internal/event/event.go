// Package event defines the immutable event records that make up a
// session's append-only log. Events are facts that have occurred, not
// commands; once appended they are never edited, reordered, or deleted.
package event

import (
	"encoding/json"
	"time"
)

// Type identifies the kind of a game event.
type Type string

// Character lifecycle events.
const (
	// TypeCreateChar records the creation of a character inside a session.
	TypeCreateChar Type = "create_char"
	// TypeUpdateChar records a partial update to character fields.
	TypeUpdateChar Type = "update_char"
)

// Inventory events.
const (
	// TypeGainItem records an item entering a character's inventory.
	TypeGainItem Type = "gain_item"
	// TypeLoseItem records one occurrence of an item leaving an inventory.
	TypeLoseItem Type = "lose_item"
	// TypeEquipItem records an item being equipped.
	TypeEquipItem Type = "equip_item"
	// TypeUnequipItem records an item being unequipped.
	TypeUnequipItem Type = "unequip_item"
	// TypeCraftItem records an item being crafted.
	TypeCraftItem Type = "craft_item"
	// TypeUseItem records an item being consumed or used.
	TypeUseItem Type = "use_item"
	// TypeTradeItem records an item changing hands between characters.
	TypeTradeItem Type = "trade_item"
)

// Vitals events.
const (
	// TypeDamage records hit points lost by a character.
	TypeDamage Type = "damage"
	// TypeHeal records hit points restored to a character.
	TypeHeal Type = "heal"
	// TypeApplyStatusEffect records a status effect applied to a character.
	TypeApplyStatusEffect Type = "apply_status_effect"
)

// Progression events.
const (
	// TypeLearnAbility records a character learning an ability.
	TypeLearnAbility Type = "learn_ability"
	// TypeLearnRecipe records a character learning a crafting recipe.
	TypeLearnRecipe Type = "learn_recipe"
	// TypeModifyAttribute records a permanent attribute change.
	TypeModifyAttribute Type = "modify_attribute"
	// TypeSkillXPGained records experience added to a progressive skill.
	TypeSkillXPGained Type = "skill_xp_gained"
	// TypeSkillLevelUp records a single skill level gained.
	TypeSkillLevelUp Type = "skill_level_up"
	// TypeProgressiveSkillCheck records a level-scaled skill check.
	TypeProgressiveSkillCheck Type = "progressive_skill_check"
	// TypeSkillActionPerformed records a skill-training action batch.
	TypeSkillActionPerformed Type = "skill_action_performed"
)

// Narrative and freeform events.
const (
	// TypeNote records a GM or player note.
	TypeNote Type = "note"
	// TypeCheck records a generic dice check.
	TypeCheck Type = "check"
	// TypeAttack records a resolved attack with its combat outcome.
	TypeAttack Type = "attack"
	// TypeCustom records an extension event with caller-defined payload.
	TypeCustom Type = "custom"
)

// knownTypes is the closed set of event types the engine interprets.
// Events outside this set are still schema-valid; the reducer treats
// them as deliberate no-ops so old logs survive new writers.
var knownTypes = map[Type]bool{
	TypeCreateChar:            true,
	TypeUpdateChar:            true,
	TypeGainItem:              true,
	TypeLoseItem:              true,
	TypeEquipItem:             true,
	TypeUnequipItem:           true,
	TypeCraftItem:             true,
	TypeUseItem:               true,
	TypeTradeItem:             true,
	TypeDamage:                true,
	TypeHeal:                  true,
	TypeApplyStatusEffect:     true,
	TypeLearnAbility:          true,
	TypeLearnRecipe:           true,
	TypeModifyAttribute:       true,
	TypeSkillXPGained:         true,
	TypeSkillLevelUp:          true,
	TypeProgressiveSkillCheck: true,
	TypeSkillActionPerformed:  true,
	TypeNote:                  true,
	TypeCheck:                 true,
	TypeAttack:                true,
	TypeCustom:                true,
}

// Known reports whether the type belongs to the interpreted event set.
func (t Type) Known() bool {
	return knownTypes[t]
}

// Event represents an immutable record in a session's event log.
//
// Data and Result carry type-specific payloads as raw JSON; the reducer
// owns their interpretation. Result holds precomputed outcomes (for
// example combat damage) so replay never re-rolls randomness.
type Event struct {
	// ID is the event identifier, format "e_" + 8 lowercase alphanumerics.
	ID string `json:"id"`
	// TS is when the event occurred (UTC).
	TS time.Time `json:"ts"`
	// Type identifies the kind of event.
	Type Type `json:"t"`
	// Actor is the character id that triggered the event, if any.
	Actor string `json:"actor,omitempty"`
	// Target is the character id affected by the event, if any.
	Target string `json:"target,omitempty"`
	// Data holds event-specific input data as JSON.
	Data json.RawMessage `json:"data,omitempty"`
	// Result holds the precomputed outcome as JSON.
	Result json.RawMessage `json:"result,omitempty"`
}
