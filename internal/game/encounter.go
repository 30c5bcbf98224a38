package game

import (
	"context"
	"encoding/json"

	"github.com/duskhollow/engine/internal/combat"
	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
)

// StartEncounter opens a turn-based encounter for a session. Every
// participant must exist in the replayed state and be alive; initiative
// is rolled from DEX and the start is recorded as a custom event.
// Encounter state is held by the service per session; only one
// encounter may be active at a time.
func (s *Service) StartEncounter(ctx context.Context, sessionID string, participantIDs []string) (combat.Encounter, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return combat.Encounter{}, err
	}
	s.mu.Lock()
	_, active := s.encounters[sessionID]
	s.mu.Unlock()
	if active {
		return combat.Encounter{}, errors.WithMetadata(errors.CodeCombatAlreadyActive, "encounter already active",
			map[string]string{"session_id": sessionID})
	}

	gs, err := s.GameState(ctx, sessionID)
	if err != nil {
		return combat.Encounter{}, err
	}
	rng := s.rng()
	combatants := make([]combat.Combatant, 0, len(participantIDs))
	for _, participantID := range participantIDs {
		character, ok := gs.State.Characters[participantID]
		if !ok {
			return combat.Encounter{}, errors.WithMetadata(errors.CodeCharacterNotFound, "participant not found",
				map[string]string{"character_id": participantID})
		}
		if character.HP.Current <= 0 {
			return combat.Encounter{}, errors.WithMetadata(errors.CodeCharacterDead, "participant is dead",
				map[string]string{"character_id": participantID})
		}
		combatants = append(combatants, combat.Combatant{
			ID:         character.ID,
			Name:       character.Name,
			Initiative: combat.RollInitiative(rng, character.Stats["DEX"]),
			HP:         character.HP.Current,
			MaxHP:      character.HP.Max,
		})
	}

	encounter := combat.StartEncounter(sessionID, combatants, s.now())
	s.mu.Lock()
	s.encounters[sessionID] = &encounter
	s.mu.Unlock()

	if err := s.appendEncounterEvent(ctx, sessionID, "encounter_started", encounter); err != nil {
		return combat.Encounter{}, err
	}
	return encounter, nil
}

// AddCombatants rolls initiative for the given characters and inserts
// them into the active encounter, re-sorting the turn order. Like
// StartEncounter, every participant must exist in the replayed state
// and be alive.
func (s *Service) AddCombatants(ctx context.Context, sessionID string, participantIDs []string) (combat.Encounter, error) {
	s.mu.Lock()
	_, active := s.encounters[sessionID]
	s.mu.Unlock()
	if !active {
		return combat.Encounter{}, errors.WithMetadata(errors.CodeCombatNotActive, "no active encounter",
			map[string]string{"session_id": sessionID})
	}

	gs, err := s.GameState(ctx, sessionID)
	if err != nil {
		return combat.Encounter{}, err
	}
	rng := s.rng()
	combatants := make([]combat.Combatant, 0, len(participantIDs))
	for _, participantID := range participantIDs {
		character, ok := gs.State.Characters[participantID]
		if !ok {
			return combat.Encounter{}, errors.WithMetadata(errors.CodeCharacterNotFound, "participant not found",
				map[string]string{"character_id": participantID})
		}
		if character.HP.Current <= 0 {
			return combat.Encounter{}, errors.WithMetadata(errors.CodeCharacterDead, "participant is dead",
				map[string]string{"character_id": participantID})
		}
		combatants = append(combatants, combat.Combatant{
			ID:         character.ID,
			Name:       character.Name,
			Initiative: combat.RollInitiative(rng, character.Stats["DEX"]),
			HP:         character.HP.Current,
			MaxHP:      character.HP.Max,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	encounter, ok := s.encounters[sessionID]
	if !ok {
		return combat.Encounter{}, errors.WithMetadata(errors.CodeCombatNotActive, "no active encounter",
			map[string]string{"session_id": sessionID})
	}
	encounter.Add(combatants...)
	return *encounter, nil
}

// RemoveCombatant drops a combatant from the active encounter. Removing
// an id that is not in the turn order is a no-op.
func (s *Service) RemoveCombatant(sessionID, combatantID string) (combat.Encounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	encounter, ok := s.encounters[sessionID]
	if !ok {
		return combat.Encounter{}, errors.WithMetadata(errors.CodeCombatNotActive, "no active encounter",
			map[string]string{"session_id": sessionID})
	}
	encounter.Remove(combatantID)
	return *encounter, nil
}

// Encounter returns the active encounter for a session.
func (s *Service) Encounter(sessionID string) (combat.Encounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	encounter, ok := s.encounters[sessionID]
	if !ok {
		return combat.Encounter{}, errors.WithMetadata(errors.CodeCombatNotActive, "no active encounter",
			map[string]string{"session_id": sessionID})
	}
	return *encounter, nil
}

// NextTurn advances the active encounter and returns the combatant
// whose turn begins.
func (s *Service) NextTurn(sessionID string) (combat.Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	encounter, ok := s.encounters[sessionID]
	if !ok {
		return combat.Combatant{}, errors.WithMetadata(errors.CodeCombatNotActive, "no active encounter",
			map[string]string{"session_id": sessionID})
	}
	current, ok := encounter.NextTurn()
	if !ok {
		return combat.Combatant{}, errors.WithMetadata(errors.CodeCombatNotActive, "encounter has no combatants",
			map[string]string{"session_id": sessionID})
	}
	return current, nil
}

// EndEncounter closes the active encounter and records the end as a
// custom event.
func (s *Service) EndEncounter(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	encounter, ok := s.encounters[sessionID]
	if ok {
		delete(s.encounters, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return errors.WithMetadata(errors.CodeCombatNotActive, "no active encounter",
			map[string]string{"session_id": sessionID})
	}
	return s.appendEncounterEvent(ctx, sessionID, "encounter_ended", *encounter)
}

func (s *Service) appendEncounterEvent(ctx context.Context, sessionID, kind string, encounter combat.Encounter) error {
	data, err := json.Marshal(map[string]any{
		"kind":       kind,
		"round":      encounter.Round,
		"combatants": encounter.Combatants,
	})
	if err != nil {
		return errors.Wrap(errors.CodeUnknown, "encode encounter data", err)
	}
	_, err = s.AppendEvent(ctx, sessionID, event.Event{
		Type: event.TypeCustom,
		Data: data,
	})
	return err
}
