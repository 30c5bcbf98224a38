package game

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/state"
)

func TestAttackResolvesAndAppends(t *testing.T) {
	svc, store := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "brin", state.HP{Max: 30, Current: 30})

	result, err := svc.Attack(context.Background(), session.ID, AttackRequest{
		AttackerID: "ada",
		DefenderID: "brin",
		DamageMin:  5,
		DamageMax:  10,
	})
	if err != nil {
		t.Fatalf("attack: %v", err)
	}

	if result.Outcome.WasMiss {
		if result.Outcome.Damage != 0 {
			t.Fatalf("miss with damage %d", result.Outcome.Damage)
		}
	} else if result.Outcome.Damage < 1 {
		t.Fatalf("hit with damage %d, want >= 1", result.Outcome.Damage)
	}
	if result.DefenderHPBefore != 30 {
		t.Fatalf("DefenderHPBefore = %d, want 30", result.DefenderHPBefore)
	}
	if result.DefenderHPAfter != result.DefenderHPBefore-result.Outcome.Damage {
		t.Fatalf("DefenderHPAfter = %d, before = %d, damage = %d",
			result.DefenderHPAfter, result.DefenderHPBefore, result.Outcome.Damage)
	}
	if result.Message == "" {
		t.Fatal("empty message")
	}

	if result.Event.Event.Type != event.TypeAttack {
		t.Fatalf("event type = %v, want attack", result.Event.Event.Type)
	}
	if result.Event.Event.Actor != "ada" || result.Event.Event.Target != "brin" {
		t.Fatalf("event actor/target = %s/%s", result.Event.Event.Actor, result.Event.Event.Target)
	}

	var payload struct {
		Amount int `json:"amount"`
	}
	if err := json.Unmarshal(result.Event.Event.Result, &payload); err != nil {
		t.Fatalf("decode result payload: %v", err)
	}
	if payload.Amount != result.Outcome.Damage {
		t.Fatalf("result.amount = %d, want %d", payload.Amount, result.Outcome.Damage)
	}

	// Replay folds the recorded amount into defender HP.
	gs, err := svc.GameState(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("game state: %v", err)
	}
	if got := gs.State.Characters["brin"].HP.Current; got != result.DefenderHPAfter {
		t.Fatalf("replayed HP = %d, want %d", got, result.DefenderHPAfter)
	}

	count, err := store.CountEvents(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("event count = %d, want 3", count)
	}
}

func TestAttackValidation(t *testing.T) {
	svc, _ := newTestService(t)
	session := createSession(t, svc)
	createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
	createCharacter(t, svc, session.ID, "dead", state.HP{Max: 30, Current: 0})

	tests := []struct {
		name string
		req  AttackRequest
		code errors.Code
	}{
		{"missing attacker", AttackRequest{DefenderID: "ada"}, errors.CodeCombatAttackerRequired},
		{"missing defender", AttackRequest{AttackerID: "ada"}, errors.CodeCombatDefenderRequired},
		{"unknown attacker", AttackRequest{AttackerID: "ghost", DefenderID: "ada"}, errors.CodeCharacterNotFound},
		{"unknown defender", AttackRequest{AttackerID: "ada", DefenderID: "ghost"}, errors.CodeCharacterNotFound},
		{"dead attacker", AttackRequest{AttackerID: "dead", DefenderID: "ada"}, errors.CodeCharacterDead},
		{"dead defender", AttackRequest{AttackerID: "ada", DefenderID: "dead"}, errors.CodeCharacterDead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Attack(context.Background(), session.ID, tt.req)
			if errors.CodeOf(err) != tt.code {
				t.Fatalf("CodeOf(err) = %v, want %v", errors.CodeOf(err), tt.code)
			}
		})
	}
}

func TestAttackDeterministicUnderFixedSeed(t *testing.T) {
	run := func() AttackResult {
		svc, _ := newTestService(t)
		session := createSession(t, svc)
		createCharacter(t, svc, session.ID, "ada", state.HP{Max: 40, Current: 40})
		createCharacter(t, svc, session.ID, "brin", state.HP{Max: 30, Current: 30})
		result, err := svc.Attack(context.Background(), session.ID, AttackRequest{
			AttackerID: "ada",
			DefenderID: "brin",
		})
		if err != nil {
			t.Fatalf("attack: %v", err)
		}
		return result
	}

	first := run()
	second := run()
	if first.Outcome != second.Outcome {
		t.Fatalf("outcomes diverged under fixed seed:\n%+v\n%+v", first.Outcome, second.Outcome)
	}
}
