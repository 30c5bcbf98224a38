package state

import (
	"encoding/json"
	"fmt"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
)

// allowedPatchFields is the update_char allow-list. Patch keys outside
// this set are dropped without error so clients can round-trip richer
// documents through the log.
var allowedPatchFields = map[string]bool{
	"id":        true,
	"name":      true,
	"class":     true,
	"lvl":       true,
	"stats":     true,
	"hp":        true,
	"inventory": true,
	"tags":      true,
	"notes":     true,
}

// Apply folds one event into the state and returns the next state.
//
// Apply never mutates its input. A non-nil error means the event's
// effect was not applied and the returned state equals the input;
// callers choose whether that aborts a replay (strict) or is recorded
// and skipped (lenient). Unrecognized event types are deliberate no-ops
// and never error, keeping old logs replayable under newer writers.
func Apply(s State, evt event.Event) (State, error) {
	switch evt.Type {
	case event.TypeCreateChar:
		var payload CreateCharPayload
		if err := decodeData(evt, &payload); err != nil {
			return s, err
		}
		if payload.Character.ID == "" {
			return s, payloadError(evt, "create_char requires data.character.id")
		}
		next := s.Clone()
		next.Characters[payload.Character.ID] = payload.Character
		return next, nil

	case event.TypeUpdateChar:
		var payload UpdateCharPayload
		if err := decodeData(evt, &payload); err != nil {
			return s, err
		}
		if payload.ID == "" {
			return s, payloadError(evt, "update_char requires data.id")
		}
		if payload.Patch == nil {
			return s, payloadError(evt, "update_char requires data.patch")
		}
		character, ok := s.Characters[payload.ID]
		if !ok {
			return s, unknownCharacterError(evt, payload.ID)
		}
		next := s.Clone()
		patched, err := applyPatch(character, payload.Patch)
		if err != nil {
			return s, payloadError(evt, err.Error())
		}
		next.Characters[payload.ID] = patched
		return next, nil

	case event.TypeGainItem:
		var payload ItemPayload
		if err := decodeData(evt, &payload); err != nil {
			return s, err
		}
		if payload.ID == "" || payload.Item == "" {
			return s, payloadError(evt, "gain_item requires data.id and data.item")
		}
		character, ok := s.Characters[payload.ID]
		if !ok {
			return s, unknownCharacterError(evt, payload.ID)
		}
		next := s.Clone()
		character = next.Characters[payload.ID]
		character.Inventory = append(character.Inventory, payload.Item)
		next.Characters[payload.ID] = character
		return next, nil

	case event.TypeLoseItem:
		var payload ItemPayload
		if err := decodeData(evt, &payload); err != nil {
			return s, err
		}
		if payload.ID == "" || payload.Item == "" {
			return s, payloadError(evt, "lose_item requires data.id and data.item")
		}
		if _, ok := s.Characters[payload.ID]; !ok {
			return s, unknownCharacterError(evt, payload.ID)
		}
		next := s.Clone()
		character := next.Characters[payload.ID]
		character.Inventory = removeOne(character.Inventory, payload.Item)
		next.Characters[payload.ID] = character
		return next, nil

	// attack events carry their resolved damage in result.amount and
	// reduce exactly like damage.
	case event.TypeDamage, event.TypeAttack:
		id, amount, err := amountFields(evt)
		if err != nil {
			return s, err
		}
		character, ok := s.Characters[id]
		if !ok {
			return s, unknownCharacterError(evt, id)
		}
		next := s.Clone()
		character = next.Characters[id]
		character.HP.Current = max(0, character.HP.Current-amount)
		next.Characters[id] = character
		return next, nil

	case event.TypeHeal:
		id, amount, err := amountFields(evt)
		if err != nil {
			return s, err
		}
		character, ok := s.Characters[id]
		if !ok {
			return s, unknownCharacterError(evt, id)
		}
		next := s.Clone()
		character = next.Characters[id]
		character.HP.Current = min(character.HP.Max, character.HP.Current+amount)
		next.Characters[id] = character
		return next, nil
	}

	// Forward-compatible default: unknown or uninterpreted types leave
	// the state untouched.
	return s, nil
}

// amountFields resolves the target id and hit-point delta for damage
// and heal events: result.amount wins over data.amount, missing
// amounts count as zero.
func amountFields(evt event.Event) (string, int, error) {
	var data AmountPayload
	if err := decodeData(evt, &data); err != nil {
		return "", 0, err
	}
	if data.ID == "" {
		return "", 0, payloadError(evt, fmt.Sprintf("%s requires data.id", evt.Type))
	}

	amount := 0
	if data.Amount != nil {
		amount = *data.Amount
	}
	if len(evt.Result) > 0 {
		var result AmountPayload
		if err := json.Unmarshal(evt.Result, &result); err != nil {
			return "", 0, payloadError(evt, fmt.Sprintf("decode %s result: %v", evt.Type, err))
		}
		if result.Amount != nil {
			amount = *result.Amount
		}
	}
	return data.ID, amount, nil
}

// applyPatch merges allow-listed patch fields into the character.
func applyPatch(c Character, patch map[string]json.RawMessage) (Character, error) {
	for key, raw := range patch {
		if !allowedPatchFields[key] {
			continue
		}
		var err error
		switch key {
		case "id":
			err = json.Unmarshal(raw, &c.ID)
		case "name":
			err = json.Unmarshal(raw, &c.Name)
		case "class":
			err = json.Unmarshal(raw, &c.Class)
		case "lvl":
			err = json.Unmarshal(raw, &c.Level)
		case "stats":
			err = json.Unmarshal(raw, &c.Stats)
		case "hp":
			err = json.Unmarshal(raw, &c.HP)
		case "inventory":
			err = json.Unmarshal(raw, &c.Inventory)
		case "tags":
			err = json.Unmarshal(raw, &c.Tags)
		case "notes":
			err = json.Unmarshal(raw, &c.Notes)
		}
		if err != nil {
			return c, fmt.Errorf("patch field %s: %w", key, err)
		}
	}
	return c, nil
}

// removeOne removes the first occurrence of item, leaving later
// duplicates in place. A missing item is a no-op, not an error.
func removeOne(inventory []string, item string) []string {
	for i, have := range inventory {
		if have == item {
			return append(inventory[:i:i], inventory[i+1:]...)
		}
	}
	return inventory
}

func decodeData(evt event.Event, target any) error {
	if len(evt.Data) == 0 {
		return payloadError(evt, fmt.Sprintf("%s requires a data payload", evt.Type))
	}
	if err := json.Unmarshal(evt.Data, target); err != nil {
		return payloadError(evt, fmt.Sprintf("decode %s data: %v", evt.Type, err))
	}
	return nil
}

func payloadError(evt event.Event, message string) error {
	return errors.WithMetadata(errors.CodeEventPayloadInvalid, message,
		map[string]string{"event_id": evt.ID, "event_type": string(evt.Type)})
}

func unknownCharacterError(evt event.Event, characterID string) error {
	return errors.WithMetadata(errors.CodeCharacterUnknown,
		fmt.Sprintf("%s refers to unknown character %s", evt.Type, characterID),
		map[string]string{"event_id": evt.ID, "character_id": characterID})
}
