package game

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/state"
	"github.com/duskhollow/engine/internal/storage"
)

// GameState is the authoritative reduced state of one session along
// with replay bookkeeping.
type GameState struct {
	SessionID string               `json:"session_id"`
	State     state.State          `json:"state"`
	Seq       int64                `json:"seq"`
	Applied   int                  `json:"applied"`
	Skipped   []state.SkippedEvent `json:"skipped,omitempty"`
}

// CharacterSummary is the per-character digest used by session recaps.
type CharacterSummary struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Class string   `json:"class,omitempty"`
	Level int      `json:"lvl,omitempty"`
	HP    string   `json:"hp"`
	Tags  []string `json:"tags,omitempty"`
}

// GameState replays the session log over a base state and returns the
// resulting authoritative state. The base is the latest snapshot when
// one exists, otherwise the character registry; only events past the
// snapshot sequence are folded. Reads past the snapshot interval
// write a fresh checkpoint, best effort.
func (s *Service) GameState(ctx context.Context, sessionID string) (GameState, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return GameState{}, err
	}

	base, baseSeq, err := s.baseState(ctx, sessionID)
	if err != nil {
		return GameState{}, err
	}

	result := GameState{SessionID: sessionID, Seq: baseSeq}
	current := base
	afterSeq := baseSeq
	replayer := state.Replayer{Strict: s.strictReplay}
	for {
		page, err := s.store.ListEvents(ctx, sessionID, afterSeq, listEventsPageSize)
		if err != nil {
			return GameState{}, errors.Wrap(errors.CodeStorageFailure, "load events", err)
		}
		if len(page) == 0 {
			break
		}
		batch := make([]event.Event, len(page))
		for i, stored := range page {
			batch[i] = stored.Event
		}
		folded, err := replayer.Replay(current, batch)
		if err != nil {
			return GameState{}, err
		}
		current = folded.State
		result.Applied += folded.Applied
		result.Skipped = append(result.Skipped, folded.Skipped...)
		afterSeq = page[len(page)-1].Seq
		result.Seq = afterSeq
		if len(page) < listEventsPageSize {
			break
		}
	}
	result.State = current

	s.maybeSnapshot(ctx, sessionID, baseSeq, result)
	return result, nil
}

// baseState loads the replay base: the latest snapshot when present,
// otherwise a fresh state seeded from the character registry.
func (s *Service) baseState(ctx context.Context, sessionID string) (state.State, int64, error) {
	snapshot, err := s.store.LatestSnapshot(ctx, sessionID)
	if err == nil {
		var snapState state.State
		if err := json.Unmarshal(snapshot.State, &snapState); err != nil {
			return state.State{}, 0, errors.Wrap(errors.CodeStorageFailure,
				fmt.Sprintf("decode snapshot for %s", sessionID), err)
		}
		if snapState.Characters == nil {
			snapState.Characters = map[string]state.Character{}
		}
		return snapState, snapshot.Seq, nil
	}
	if !stderrors.Is(err, storage.ErrNotFound) {
		return state.State{}, 0, errors.Wrap(errors.CodeStorageFailure, "load snapshot", err)
	}

	base := state.NewState()
	characters, err := s.store.ListCharacters(ctx)
	if err != nil {
		return state.State{}, 0, errors.Wrap(errors.CodeStorageFailure, "load character registry", err)
	}
	for _, character := range characters {
		base.Characters[character.ID] = character
	}
	return base, 0, nil
}

func (s *Service) maybeSnapshot(ctx context.Context, sessionID string, baseSeq int64, gs GameState) {
	if s.snapshotInterval <= 0 || gs.Seq-baseSeq < s.snapshotInterval {
		return
	}
	doc, err := json.Marshal(gs.State)
	if err != nil {
		s.log.Warn("encode snapshot", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	err = s.store.PutSnapshot(ctx, storage.Snapshot{
		SessionID: sessionID,
		Seq:       gs.Seq,
		State:     doc,
		CreatedAt: s.now(),
	})
	if err != nil {
		s.log.Warn("write snapshot", zap.String("session_id", sessionID), zap.Error(err))
		return
	}
	s.log.Info("snapshot written",
		zap.String("session_id", sessionID),
		zap.Int64("seq", gs.Seq))
}

// Summary produces the per-character digest of a session's state,
// ordered by character id.
func (s *Service) Summary(ctx context.Context, sessionID string) ([]CharacterSummary, error) {
	gs, err := s.GameState(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]CharacterSummary, 0, len(gs.State.Characters))
	for _, character := range gs.State.Characters {
		out = append(out, CharacterSummary{
			ID:    character.ID,
			Name:  character.Name,
			Class: character.Class,
			Level: character.Level,
			HP:    fmt.Sprintf("%d/%d", character.HP.Current, character.HP.Max),
			Tags:  character.Tags,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
