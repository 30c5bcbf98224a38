package game

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/skill"
	"github.com/duskhollow/engine/internal/state"
	"github.com/duskhollow/engine/internal/storage"
)

// SkillGainResult reports an XP grant and the level-ups it triggered.
type SkillGainResult struct {
	SkillName string          `json:"skill_name"`
	XPGained  int             `json:"xp_gained"`
	NewLevel  int             `json:"new_level"`
	NewXP     int             `json:"new_xp"`
	LevelUps  []skill.LevelUp `json:"level_ups,omitempty"`
	Message   string          `json:"message"`
}

// SkillActionResult reports a batch of training-action attempts.
type SkillActionResult struct {
	ActionName string          `json:"action_name"`
	Attempts   int             `json:"attempts"`
	Successes  int             `json:"successes"`
	XPGained   int             `json:"xp_gained"`
	Produced   []string        `json:"produced,omitempty"`
	NewLevel   int             `json:"new_level"`
	NewXP      int             `json:"new_xp"`
	LevelUps   []skill.LevelUp `json:"level_ups,omitempty"`
	Message    string          `json:"message"`
}

// SkillOverview is a character's full skill profile.
type SkillOverview struct {
	CharacterID string        `json:"character_id"`
	Skills      []SkillDetail `json:"skills"`
	CombatLevel int           `json:"combat_level"`
	TotalLevel  int           `json:"total_level"`
}

// SkillDetail is one skill with derived progression values.
type SkillDetail struct {
	skill.Skill
	Tier           string  `json:"tier"`
	Bonus          int     `json:"bonus"`
	XPToNext       int     `json:"xp_to_next"`
	ProgressToNext float64 `json:"progress_to_next"`
}

// loadCharacterSkill fetches a character from the registry and the
// named skill from its profile, creating the default profile for
// characters that have none yet.
func (s *Service) loadCharacterSkill(ctx context.Context, characterID, skillName string) (state.Character, skill.Skill, error) {
	if characterID == "" {
		return state.Character{}, skill.Skill{}, errors.New(errors.CodeCharacterIDRequired, "character id is required")
	}
	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return state.Character{}, skill.Skill{}, errors.WithMetadata(errors.CodeCharacterNotFound, "character not found",
				map[string]string{"character_id": characterID})
		}
		return state.Character{}, skill.Skill{}, errors.Wrap(errors.CodeStorageFailure, "get character", err)
	}
	if character.Skills == nil {
		character.Skills = skill.NewDefaultSet()
	}
	current, ok := character.Skills[skillName]
	if !ok {
		return state.Character{}, skill.Skill{}, errors.WithMetadata(errors.CodeSkillUnknown,
			fmt.Sprintf("unknown skill %s", skillName),
			map[string]string{"skill": skillName})
	}
	return character, current, nil
}

func (s *Service) saveCharacterSkill(ctx context.Context, character state.Character, updated skill.Skill) error {
	character.Skills[updated.Name] = updated
	if err := s.store.PutCharacter(ctx, character); err != nil {
		return errors.Wrap(errors.CodeStorageFailure, "save character skills", err)
	}
	return nil
}

// AddSkillXP grants XP to a character's skill, persists the updated
// profile, and records one skill_xp_gained event plus one
// skill_level_up event per level gained.
func (s *Service) AddSkillXP(ctx context.Context, sessionID, characterID, skillName string, amount int, reason string) (SkillGainResult, error) {
	if amount <= 0 {
		return SkillGainResult{}, errors.New(errors.CodeSkillXPInvalid, "xp amount must be positive")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return SkillGainResult{}, err
	}
	character, current, err := s.loadCharacterSkill(ctx, characterID, skillName)
	if err != nil {
		return SkillGainResult{}, err
	}

	oldLevel, oldXP := current.Level, current.XP
	updated, gain := skill.AddXP(current, amount)
	if err := s.saveCharacterSkill(ctx, character, updated); err != nil {
		return SkillGainResult{}, err
	}

	data, err := json.Marshal(map[string]any{
		"skill_name": skillName,
		"xp_gained":  amount,
		"old_level":  oldLevel,
		"new_level":  gain.NewLevel,
		"old_xp":     oldXP,
		"new_xp":     gain.NewXP,
		"level_ups":  gain.LevelUps,
		"reason":     reason,
	})
	if err != nil {
		return SkillGainResult{}, errors.Wrap(errors.CodeUnknown, "encode skill xp data", err)
	}
	if _, err := s.AppendEvent(ctx, sessionID, event.Event{
		Type:  event.TypeSkillXPGained,
		Actor: characterID,
		Data:  data,
	}); err != nil {
		return SkillGainResult{}, err
	}
	for _, levelUp := range gain.LevelUps {
		levelUpData, err := json.Marshal(levelUp)
		if err != nil {
			return SkillGainResult{}, errors.Wrap(errors.CodeUnknown, "encode level up data", err)
		}
		if _, err := s.AppendEvent(ctx, sessionID, event.Event{
			Type:  event.TypeSkillLevelUp,
			Actor: characterID,
			Data:  levelUpData,
		}); err != nil {
			return SkillGainResult{}, err
		}
	}

	message := fmt.Sprintf("Gained %d XP in %s", amount, skillName)
	if len(gain.LevelUps) > 0 {
		message += ". Level up!"
		for _, levelUp := range gain.LevelUps {
			message += " Level " + strconv.Itoa(levelUp.NewLevel)
		}
	}
	return SkillGainResult{
		SkillName: skillName,
		XPGained:  amount,
		NewLevel:  gain.NewLevel,
		NewXP:     gain.NewXP,
		LevelUps:  gain.LevelUps,
		Message:   message,
	}, nil
}

// ProgressiveCheck rolls a skill check whose success rate scales with
// the gap between skill level and difficulty, and records the check.
func (s *Service) ProgressiveCheck(ctx context.Context, sessionID, characterID, skillName string, difficulty int) (skill.CheckResult, error) {
	if difficulty < 0 {
		return skill.CheckResult{}, errors.New(errors.CodeSkillDifficultyInvalid, "difficulty must be non-negative")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return skill.CheckResult{}, err
	}
	_, current, err := s.loadCharacterSkill(ctx, characterID, skillName)
	if err != nil {
		return skill.CheckResult{}, err
	}

	check := skill.RunCheck(s.rng(), skillName, current.Level, difficulty)

	data, err := json.Marshal(check)
	if err != nil {
		return skill.CheckResult{}, errors.Wrap(errors.CodeUnknown, "encode check data", err)
	}
	if _, err := s.AppendEvent(ctx, sessionID, event.Event{
		Type:  event.TypeProgressiveSkillCheck,
		Actor: characterID,
		Data:  data,
	}); err != nil {
		return skill.CheckResult{}, err
	}
	return check, nil
}

// PerformSkillAction runs a training action (mining, woodcutting,
// fishing) quantity times, grants the earned XP, and records one
// skill_action_performed event when anything was earned.
func (s *Service) PerformSkillAction(ctx context.Context, sessionID, characterID, skillName, actionName string, quantity int) (SkillActionResult, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return SkillActionResult{}, err
	}
	character, current, err := s.loadCharacterSkill(ctx, characterID, skillName)
	if err != nil {
		return SkillActionResult{}, err
	}
	action, ok := skill.LookupAction(skillName, actionName)
	if !ok {
		return SkillActionResult{}, errors.WithMetadata(errors.CodeSkillActionUnknown,
			fmt.Sprintf("unknown action %s for skill %s", actionName, skillName),
			map[string]string{"skill": skillName, "action": actionName})
	}
	if current.Level < action.LevelRequired {
		return SkillActionResult{}, errors.WithMetadata(errors.CodeSkillLevelTooLow,
			fmt.Sprintf("level %d %s required (you are level %d)", action.LevelRequired, skillName, current.Level),
			map[string]string{"skill": skillName, "action": actionName,
				"required": strconv.Itoa(action.LevelRequired), "level": strconv.Itoa(current.Level)})
	}
	if quantity <= 0 {
		quantity = 1
	}

	oldLevel := current.Level
	outcome := skill.PerformAction(s.rng(), action, current.Level, quantity)

	var gain skill.Gain
	if outcome.XPGained > 0 {
		var updated skill.Skill
		updated, gain = skill.AddXP(current, outcome.XPGained)
		if err := s.saveCharacterSkill(ctx, character, updated); err != nil {
			return SkillActionResult{}, err
		}

		data, err := json.Marshal(map[string]any{
			"skill_name":  skillName,
			"action_name": actionName,
			"quantity":    quantity,
			"successes":   outcome.Successes,
			"xp_gained":   outcome.XPGained,
			"produced":    outcome.Produced,
			"old_level":   oldLevel,
			"new_level":   gain.NewLevel,
			"level_ups":   gain.LevelUps,
		})
		if err != nil {
			return SkillActionResult{}, errors.Wrap(errors.CodeUnknown, "encode action data", err)
		}
		if _, err := s.AppendEvent(ctx, sessionID, event.Event{
			Type:  event.TypeSkillActionPerformed,
			Actor: characterID,
			Data:  data,
		}); err != nil {
			return SkillActionResult{}, err
		}
	} else {
		gain = skill.Gain{NewLevel: current.Level, NewXP: current.XP}
	}

	message := fmt.Sprintf("Performed %s %d/%d times. Gained %d XP.",
		actionName, outcome.Successes, quantity, outcome.XPGained)
	if len(gain.LevelUps) > 0 {
		message += fmt.Sprintf(" Level up! Now level %d.", gain.NewLevel)
	}
	return SkillActionResult{
		ActionName: actionName,
		Attempts:   quantity,
		Successes:  outcome.Successes,
		XPGained:   outcome.XPGained,
		Produced:   outcome.Produced,
		NewLevel:   gain.NewLevel,
		NewXP:      gain.NewXP,
		LevelUps:   gain.LevelUps,
		Message:    message,
	}, nil
}

// SkillsOverview returns a character's full skill profile with derived
// tiers, bonuses, and aggregate levels, ordered by skill name.
func (s *Service) SkillsOverview(ctx context.Context, characterID string) (SkillOverview, error) {
	if characterID == "" {
		return SkillOverview{}, errors.New(errors.CodeCharacterIDRequired, "character id is required")
	}
	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return SkillOverview{}, errors.WithMetadata(errors.CodeCharacterNotFound, "character not found",
				map[string]string{"character_id": characterID})
		}
		return SkillOverview{}, errors.Wrap(errors.CodeStorageFailure, "get character", err)
	}
	skills := character.Skills
	if skills == nil {
		skills = skill.NewDefaultSet()
	}

	overview := SkillOverview{
		CharacterID: characterID,
		CombatLevel: skill.CombatLevel(skills),
		TotalLevel:  skill.TotalLevel(skills),
	}
	for _, current := range skills {
		overview.Skills = append(overview.Skills, SkillDetail{
			Skill:          current,
			Tier:           current.Tier(),
			Bonus:          current.Bonus(),
			XPToNext:       current.XPToNext(),
			ProgressToNext: current.ProgressToNext(),
		})
	}
	sort.Slice(overview.Skills, func(i, j int) bool {
		return overview.Skills[i].Name < overview.Skills[j].Name
	})
	return overview, nil
}
