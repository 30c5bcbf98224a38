package game

import (
	"context"
	"testing"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/state"
)

func TestEncounterLifecycle(t *testing.T) {
	svc, store := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "brin", state.HP{Max: 30, Current: 30})

	encounter, err := svc.StartEncounter(context.Background(), session.ID, []string{"ada", "brin"})
	if err != nil {
		t.Fatalf("start encounter: %v", err)
	}
	if !encounter.Active || encounter.Round != 1 || len(encounter.Combatants) != 2 {
		t.Fatalf("encounter = %+v", encounter)
	}
	// Turn order follows initiative, highest first.
	if encounter.Combatants[0].Initiative < encounter.Combatants[1].Initiative {
		t.Fatalf("combatants out of initiative order: %+v", encounter.Combatants)
	}

	// A second start on the same session is rejected.
	_, err = svc.StartEncounter(context.Background(), session.ID, []string{"ada"})
	if errors.CodeOf(err) != errors.CodeCombatAlreadyActive {
		t.Fatalf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.CodeCombatAlreadyActive)
	}

	// Two turns wrap back to the first combatant and advance the round.
	first, err := svc.NextTurn(session.ID)
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if _, err := svc.NextTurn(session.ID); err != nil {
		t.Fatalf("next turn: %v", err)
	}
	again, err := svc.NextTurn(session.ID)
	if err != nil {
		t.Fatalf("next turn: %v", err)
	}
	if first.ID != again.ID {
		t.Fatalf("turn order did not wrap: %s then %s", first.ID, again.ID)
	}
	current, err := svc.Encounter(session.ID)
	if err != nil {
		t.Fatalf("encounter: %v", err)
	}
	if current.Round != 2 {
		t.Fatalf("Round = %d, want 2", current.Round)
	}

	if err := svc.EndEncounter(context.Background(), session.ID); err != nil {
		t.Fatalf("end encounter: %v", err)
	}
	if _, err := svc.Encounter(session.ID); errors.CodeOf(err) != errors.CodeCombatNotActive {
		t.Fatalf("CodeOf(err) = %v, want %v", errors.CodeOf(err), errors.CodeCombatNotActive)
	}

	// Start and end are both recorded as custom events after the two
	// create_char events.
	events, err := store.ListEvents(context.Background(), session.ID, 2, 0)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	for _, stored := range events {
		if stored.Event.Type != event.TypeCustom {
			t.Fatalf("event type = %v, want custom", stored.Event.Type)
		}
	}
}

func TestAttackUpdatesEncounterHP(t *testing.T) {
	svc, _ := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "brin", state.HP{Max: 40, Current: 40})

	if _, err := svc.StartEncounter(context.Background(), session.ID, []string{"ada", "brin"}); err != nil {
		t.Fatalf("start encounter: %v", err)
	}

	result, err := svc.Attack(context.Background(), session.ID, AttackRequest{
		AttackerID: "ada",
		DefenderID: "brin",
	})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}

	encounter, err := svc.Encounter(session.ID)
	if err != nil {
		t.Fatalf("encounter: %v", err)
	}
	for _, combatant := range encounter.Combatants {
		want := 40
		if combatant.ID == "brin" {
			want = result.DefenderHPAfter
		}
		if combatant.HP != want {
			t.Fatalf("combatant %s HP = %d, want %d", combatant.ID, combatant.HP, want)
		}
	}
}

func TestAddAndRemoveCombatants(t *testing.T) {
	svc, _ := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "brin", state.HP{Max: 30, Current: 30})
	createCharacter(t, svc, session.ID, "cole", state.HP{Max: 25, Current: 25})

	if _, err := svc.StartEncounter(context.Background(), session.ID, []string{"ada", "brin"}); err != nil {
		t.Fatalf("start encounter: %v", err)
	}

	encounter, err := svc.AddCombatants(context.Background(), session.ID, []string{"cole"})
	if err != nil {
		t.Fatalf("add combatants: %v", err)
	}
	if len(encounter.Combatants) != 3 {
		t.Fatalf("len(Combatants) = %d, want 3", len(encounter.Combatants))
	}
	for i := 1; i < len(encounter.Combatants); i++ {
		if encounter.Combatants[i-1].Initiative < encounter.Combatants[i].Initiative {
			t.Fatalf("combatants out of initiative order after add: %+v", encounter.Combatants)
		}
	}

	encounter, err = svc.RemoveCombatant(session.ID, "brin")
	if err != nil {
		t.Fatalf("remove combatant: %v", err)
	}
	if len(encounter.Combatants) != 2 {
		t.Fatalf("len(Combatants) = %d, want 2", len(encounter.Combatants))
	}
	for _, combatant := range encounter.Combatants {
		if combatant.ID == "brin" {
			t.Fatalf("brin still present after removal: %+v", encounter.Combatants)
		}
	}
	if encounter.TurnIndex >= len(encounter.Combatants) {
		t.Fatalf("TurnIndex = %d past %d combatants", encounter.TurnIndex, len(encounter.Combatants))
	}
}

func TestCombatantMutationValidation(t *testing.T) {
	svc, _ := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "dead", state.HP{Max: 30, Current: 0})

	// No encounter yet: both mutations are rejected.
	if _, err := svc.AddCombatants(context.Background(), session.ID, []string{"ada"}); errors.CodeOf(err) != errors.CodeCombatNotActive {
		t.Fatalf("add without encounter: CodeOf(err) = %v", errors.CodeOf(err))
	}
	if _, err := svc.RemoveCombatant(session.ID, "ada"); errors.CodeOf(err) != errors.CodeCombatNotActive {
		t.Fatalf("remove without encounter: CodeOf(err) = %v", errors.CodeOf(err))
	}

	if _, err := svc.StartEncounter(context.Background(), session.ID, []string{"ada"}); err != nil {
		t.Fatalf("start encounter: %v", err)
	}
	if _, err := svc.AddCombatants(context.Background(), session.ID, []string{"ghost"}); errors.CodeOf(err) != errors.CodeCharacterNotFound {
		t.Fatalf("add unknown participant: CodeOf(err) = %v", errors.CodeOf(err))
	}
	if _, err := svc.AddCombatants(context.Background(), session.ID, []string{"dead"}); errors.CodeOf(err) != errors.CodeCharacterDead {
		t.Fatalf("add dead participant: CodeOf(err) = %v", errors.CodeOf(err))
	}
}

func TestStartEncounterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "dead", state.HP{Max: 30, Current: 0})

	if _, err := svc.StartEncounter(context.Background(), session.ID, []string{"ghost"}); errors.CodeOf(err) != errors.CodeCharacterNotFound {
		t.Fatalf("unknown participant: CodeOf(err) = %v", errors.CodeOf(err))
	}
	if _, err := svc.StartEncounter(context.Background(), session.ID, []string{"ada", "dead"}); errors.CodeOf(err) != errors.CodeCharacterDead {
		t.Fatalf("dead participant: CodeOf(err) = %v", errors.CodeOf(err))
	}
	if _, err := svc.NextTurn(session.ID); errors.CodeOf(err) != errors.CodeCombatNotActive {
		t.Fatalf("no encounter: CodeOf(err) = %v", errors.CodeOf(err))
	}
}
