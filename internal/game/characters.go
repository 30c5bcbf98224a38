package game

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/skill"
	"github.com/duskhollow/engine/internal/state"
	"github.com/duskhollow/engine/internal/storage"
)

// CreateCharacter registers a character and records its creation in a
// session log. The character enters the registry with a full default
// skill profile so progression operations work immediately, and the
// create_char event makes it part of the replayable history.
func (s *Service) CreateCharacter(ctx context.Context, sessionID string, character state.Character) (state.Character, error) {
	if character.ID == "" {
		return state.Character{}, errors.New(errors.CodeCharacterIDRequired, "character id is required")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return state.Character{}, err
	}
	if character.Skills == nil {
		character.Skills = skill.NewDefaultSet()
	}
	if character.Level == 0 {
		character.Level = 1
	}

	if err := s.store.PutCharacter(ctx, character); err != nil {
		return state.Character{}, errors.Wrap(errors.CodeStorageFailure, "register character", err)
	}

	data, err := json.Marshal(state.CreateCharPayload{Character: character})
	if err != nil {
		return state.Character{}, errors.Wrap(errors.CodeUnknown, "encode character", err)
	}
	if _, err := s.AppendEvent(ctx, sessionID, event.Event{
		Type:  event.TypeCreateChar,
		Actor: character.ID,
		Data:  data,
	}); err != nil {
		return state.Character{}, err
	}
	return character, nil
}

// GetCharacter returns a character from the registry.
func (s *Service) GetCharacter(ctx context.Context, characterID string) (state.Character, error) {
	if characterID == "" {
		return state.Character{}, errors.New(errors.CodeCharacterIDRequired, "character id is required")
	}
	character, err := s.store.GetCharacter(ctx, characterID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return state.Character{}, errors.WithMetadata(errors.CodeCharacterNotFound, "character not found",
				map[string]string{"character_id": characterID})
		}
		return state.Character{}, errors.Wrap(errors.CodeStorageFailure, "get character", err)
	}
	return character, nil
}

// ListCharacters returns the character registry ordered by id.
func (s *Service) ListCharacters(ctx context.Context) ([]state.Character, error) {
	characters, err := s.store.ListCharacters(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageFailure, "list characters", err)
	}
	return characters, nil
}
