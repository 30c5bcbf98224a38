// Package state implements the deterministic fold that turns an ordered
// event sequence into authoritative character state. The fold is pure:
// replaying the same events over the same base state always yields the
// same result, which is the engine's central correctness property.
package state

import "github.com/duskhollow/engine/internal/skill"

// HP tracks a character's hit points. Current is always kept inside
// [0, Max] by the reducer's saturating damage and heal cases.
type HP struct {
	Max     int `json:"max"`
	Current int `json:"current"`
}

// Character is one entity inside the reduced state, keyed by id.
// Characters are created by create_char events and never physically
// deleted; there is no delete_char event type.
type Character struct {
	// ID is the character identifier.
	ID string `json:"id"`
	// Name is the display name.
	Name string `json:"name,omitempty"`
	// Class is the character class label.
	Class string `json:"class,omitempty"`
	// Level is the character level. The JSON key is "lvl" for log
	// compatibility.
	Level int `json:"lvl,omitempty"`
	// Stats maps the six ability names (STR, DEX, CON, INT, WIS, CHA)
	// to scores.
	Stats map[string]int `json:"stats,omitempty"`
	// HP holds current and maximum hit points.
	HP HP `json:"hp"`
	// Inventory is the ordered list of item identifiers; duplicates are
	// allowed and meaningful.
	Inventory []string `json:"inventory,omitempty"`
	// Tags are freeform labels.
	Tags []string `json:"tags,omitempty"`
	// Notes is freeform text.
	Notes string `json:"notes,omitempty"`
	// Skills is the progressive skill profile, maintained on the
	// snapshot by the skill service rather than by the fold.
	Skills map[string]skill.Skill `json:"skills_progressive,omitempty"`
	// Armor is the armor rating used by combat resolution.
	Armor int `json:"armor,omitempty"`
}

// State is the reduced world state: every known character keyed by id.
type State struct {
	Characters map[string]Character `json:"characters"`
}

// NewState returns an empty state ready for replay.
func NewState() State {
	return State{Characters: map[string]Character{}}
}

// Clone returns a deep copy of the state. The fold clones before every
// mutation so callers can hold onto earlier states safely.
func (s State) Clone() State {
	out := State{Characters: make(map[string]Character, len(s.Characters))}
	for id, c := range s.Characters {
		out.Characters[id] = c.Clone()
	}
	return out
}

// Clone returns a deep copy of the character.
func (c Character) Clone() Character {
	out := c
	if c.Stats != nil {
		out.Stats = make(map[string]int, len(c.Stats))
		for k, v := range c.Stats {
			out.Stats[k] = v
		}
	}
	if c.Inventory != nil {
		out.Inventory = append([]string(nil), c.Inventory...)
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Skills != nil {
		out.Skills = make(map[string]skill.Skill, len(c.Skills))
		for k, v := range c.Skills {
			out.Skills[k] = v
		}
	}
	return out
}
