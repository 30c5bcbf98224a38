package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/duskhollow/engine/internal/combat"
	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/storage"
)

// Default damage range when an attack request does not carry one.
const (
	defaultDamageMin = 5
	defaultDamageMax = 15
)

// xpRewardPerLevel scales the XP granted for defeating a character.
const xpRewardPerLevel = 25

// AttackRequest describes one attack against a session participant.
type AttackRequest struct {
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`
	// DamageMin and DamageMax bound the base roll; both zero means the
	// default 5..15 range.
	DamageMin int `json:"damage_min,omitempty"`
	DamageMax int `json:"damage_max,omitempty"`
	// SkillBonus is a flat damage bonus applied on top of the
	// attacker's own skill bonus.
	SkillBonus int `json:"skill_bonus,omitempty"`
}

// AttackResult is the resolved attack, already appended to the log.
type AttackResult struct {
	Event            storage.StoredEvent `json:"event"`
	Outcome          combat.Outcome      `json:"outcome"`
	DefenderHPBefore int                 `json:"defender_hp_before"`
	DefenderHPAfter  int                 `json:"defender_hp_after"`
	DefenderDefeated bool                `json:"defender_defeated"`
	XPReward         int                 `json:"xp_reward,omitempty"`
	Message          string              `json:"message"`
}

// attackEventResult is the result payload recorded on attack events.
// The amount field drives the reducer's damage case on replay.
type attackEventResult struct {
	combat.Outcome
	Amount           int    `json:"amount"`
	DefenderHPBefore int    `json:"defender_hp_before"`
	DefenderHPAfter  int    `json:"defender_hp_after"`
	DefenderDefeated bool   `json:"defender_defeated"`
	XPReward         int    `json:"xp_reward,omitempty"`
	Message          string `json:"message"`
}

// Attack resolves one attack inside a session: both participants must
// exist in the replayed state and be alive; the outcome is embedded in
// an attack event so replays reproduce the damage without rerolling.
func (s *Service) Attack(ctx context.Context, sessionID string, req AttackRequest) (AttackResult, error) {
	if req.AttackerID == "" {
		return AttackResult{}, errors.New(errors.CodeCombatAttackerRequired, "attacker id is required")
	}
	if req.DefenderID == "" {
		return AttackResult{}, errors.New(errors.CodeCombatDefenderRequired, "defender id is required")
	}

	gs, err := s.GameState(ctx, sessionID)
	if err != nil {
		return AttackResult{}, err
	}
	attacker, ok := gs.State.Characters[req.AttackerID]
	if !ok {
		return AttackResult{}, errors.WithMetadata(errors.CodeCharacterNotFound, "attacker not found",
			map[string]string{"character_id": req.AttackerID})
	}
	defender, ok := gs.State.Characters[req.DefenderID]
	if !ok {
		return AttackResult{}, errors.WithMetadata(errors.CodeCharacterNotFound, "defender not found",
			map[string]string{"character_id": req.DefenderID})
	}
	if attacker.HP.Current <= 0 {
		return AttackResult{}, errors.WithMetadata(errors.CodeCharacterDead, "attacker is dead",
			map[string]string{"character_id": req.AttackerID})
	}
	if defender.HP.Current <= 0 {
		return AttackResult{}, errors.WithMetadata(errors.CodeCharacterDead, "defender is already dead",
			map[string]string{"character_id": req.DefenderID})
	}

	damageMin, damageMax := req.DamageMin, req.DamageMax
	if damageMin == 0 && damageMax == 0 {
		damageMin, damageMax = defaultDamageMin, defaultDamageMax
	}
	skillBonus := req.SkillBonus
	if attack, ok := attacker.Skills["Attack"]; ok {
		skillBonus += attack.Bonus()
	}

	outcome := combat.ResolveAttack(s.rng(), combat.AttackInput{
		AttackerLevel: attacker.Level,
		AttackerStats: attacker.Stats,
		DamageMin:     damageMin,
		DamageMax:     damageMax,
		DefenderArmor: defender.Armor,
		SkillBonus:    skillBonus,
	})

	hpBefore := defender.HP.Current
	hpAfter := hpBefore - outcome.Damage
	if hpAfter < 0 {
		hpAfter = 0
	}
	defeated := hpAfter == 0
	xpReward := 0
	if defeated {
		xpReward = defender.Level * xpRewardPerLevel
	}

	message := attackMessage(req.AttackerID, req.DefenderID, outcome, defeated)

	data, err := json.Marshal(map[string]any{
		"id":          req.DefenderID,
		"damage_min":  damageMin,
		"damage_max":  damageMax,
		"skill_bonus": skillBonus,
	})
	if err != nil {
		return AttackResult{}, errors.Wrap(errors.CodeUnknown, "encode attack data", err)
	}
	result, err := json.Marshal(attackEventResult{
		Outcome:          outcome,
		Amount:           outcome.Damage,
		DefenderHPBefore: hpBefore,
		DefenderHPAfter:  hpAfter,
		DefenderDefeated: defeated,
		XPReward:         xpReward,
		Message:          message,
	})
	if err != nil {
		return AttackResult{}, errors.Wrap(errors.CodeUnknown, "encode attack result", err)
	}

	stored, err := s.AppendEvent(ctx, sessionID, event.Event{
		Type:   event.TypeAttack,
		Actor:  req.AttackerID,
		Target: req.DefenderID,
		Data:   data,
		Result: result,
	})
	if err != nil {
		return AttackResult{}, err
	}

	// Mirror the damage onto the active encounter so turn-order HP
	// tracks the log. Defeated combatants stay in the initiative order
	// at 0 HP until removed explicitly.
	s.mu.Lock()
	if encounter, ok := s.encounters[sessionID]; ok {
		encounter.SetHP(req.DefenderID, hpAfter)
	}
	s.mu.Unlock()

	return AttackResult{
		Event:            stored,
		Outcome:          outcome,
		DefenderHPBefore: hpBefore,
		DefenderHPAfter:  hpAfter,
		DefenderDefeated: defeated,
		XPReward:         xpReward,
		Message:          message,
	}, nil
}

func attackMessage(attackerID, defenderID string, outcome combat.Outcome, defeated bool) string {
	var message string
	switch {
	case outcome.WasMiss:
		message = fmt.Sprintf("%s missed %s!", attackerID, defenderID)
	case outcome.WasCritical:
		message = fmt.Sprintf("CRITICAL HIT! %s dealt %d damage to %s!", attackerID, outcome.Damage, defenderID)
	default:
		message = fmt.Sprintf("%s dealt %d damage to %s", attackerID, outcome.Damage, defenderID)
	}
	if defeated {
		message += fmt.Sprintf(" %s has been defeated!", defenderID)
	}
	return message
}
