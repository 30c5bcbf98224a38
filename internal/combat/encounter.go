package combat

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// Combatant is one participant in an active encounter.
type Combatant struct {
	// ID is the character id.
	ID string `json:"id"`
	// Name is the display name at encounter start.
	Name string `json:"name"`
	// Initiative is the rolled turn-order score.
	Initiative int `json:"initiative"`
	// HP is the current hit points mirrored from character state.
	HP int `json:"hp"`
	// MaxHP is the maximum hit points mirrored from character state.
	MaxHP int `json:"max_hp"`
}

// Encounter tracks turn order for one active combat. It is plain data;
// the owning service serializes access per session.
type Encounter struct {
	// Active reports whether combat is in progress.
	Active bool `json:"active"`
	// SessionID is the session the encounter belongs to.
	SessionID string `json:"session_id"`
	// Round is the current combat round, starting at 1.
	Round int `json:"round"`
	// TurnIndex points into Combatants at the acting combatant.
	TurnIndex int `json:"turn_index"`
	// Combatants is the initiative-ordered participant list.
	Combatants []Combatant `json:"combatants"`
	// StartedAt is when the encounter began.
	StartedAt time.Time `json:"started_at"`
}

// RollInitiative rolls turn order for a DEX score: d20 plus the
// standard (DEX-10)/2 modifier. The division floors, so odd scores
// below 10 round the penalty down (DEX 7 is -2, not -1).
func RollInitiative(rng *rand.Rand, dex int) int {
	modifier := int(math.Floor(float64(dex-baselineStat) / 2))
	return rng.Intn(20) + 1 + modifier
}

// StartEncounter builds an encounter from rolled combatants, sorted by
// initiative descending.
func StartEncounter(sessionID string, combatants []Combatant, startedAt time.Time) Encounter {
	sorted := make([]Combatant, len(combatants))
	copy(sorted, combatants)
	sortByInitiative(sorted)
	return Encounter{
		Active:     true,
		SessionID:  sessionID,
		Round:      1,
		TurnIndex:  0,
		Combatants: sorted,
		StartedAt:  startedAt,
	}
}

// NextTurn advances to the next combatant, wrapping into a new round,
// and returns the combatant now acting. A second return of false means
// the encounter has no combatants.
func (e *Encounter) NextTurn() (Combatant, bool) {
	if len(e.Combatants) == 0 {
		return Combatant{}, false
	}
	e.TurnIndex++
	if e.TurnIndex >= len(e.Combatants) {
		e.TurnIndex = 0
		e.Round++
	}
	return e.Combatants[e.TurnIndex], true
}

// Current returns the combatant whose turn it is.
func (e *Encounter) Current() (Combatant, bool) {
	if e.TurnIndex < 0 || e.TurnIndex >= len(e.Combatants) {
		return Combatant{}, false
	}
	return e.Combatants[e.TurnIndex], true
}

// Add inserts combatants and re-sorts the initiative order.
func (e *Encounter) Add(combatants ...Combatant) {
	e.Combatants = append(e.Combatants, combatants...)
	sortByInitiative(e.Combatants)
}

// Remove drops a combatant by id; the turn index is clamped so the
// encounter stays consistent when the acting combatant leaves.
func (e *Encounter) Remove(id string) {
	kept := e.Combatants[:0]
	for _, c := range e.Combatants {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	e.Combatants = kept
	if e.TurnIndex >= len(e.Combatants) {
		e.TurnIndex = 0
	}
}

// SetHP mirrors a hit-point change onto the tracked combatant.
func (e *Encounter) SetHP(id string, hp int) {
	for i := range e.Combatants {
		if e.Combatants[i].ID == id {
			e.Combatants[i].HP = hp
		}
	}
}

func sortByInitiative(combatants []Combatant) {
	sort.SliceStable(combatants, func(i, j int) bool {
		return combatants[i].Initiative > combatants[j].Initiative
	})
}
