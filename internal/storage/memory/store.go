// Package memory provides an in-memory storage implementation used by
// tests and ephemeral runs. It honors the same per-session append
// serialization contract as the durable backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/state"
	"github.com/duskhollow/engine/internal/storage"
)

// Store keeps sessions, event logs, characters, and snapshots in
// process memory.
type Store struct {
	mu         sync.RWMutex
	sessions   map[string]storage.Session
	events     map[string][]storage.StoredEvent
	snapshots  map[string]storage.Snapshot
	characters map[string]state.Character
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		sessions:   make(map[string]storage.Session),
		events:     make(map[string][]storage.StoredEvent),
		snapshots:  make(map[string]storage.Snapshot),
		characters: make(map[string]state.Character),
	}
}

// CreateSession stores session metadata, rejecting duplicate ids.
func (s *Store) CreateSession(ctx context.Context, session storage.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.sessions[session.ID] = session
	return nil
}

// GetSession returns session metadata by id.
func (s *Store) GetSession(ctx context.Context, id string) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return storage.Session{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return storage.Session{}, storage.ErrNotFound
	}
	return session, nil
}

// ListSessions returns all sessions ordered by creation time, then id.
func (s *Store) ListSessions(ctx context.Context) ([]storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]storage.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// AppendEvent appends one event to the session log and returns its
// sequence number. The write lock serializes appends so sequence
// numbers are gapless even under concurrent writers.
func (s *Store) AppendEvent(ctx context.Context, sessionID string, evt event.Event) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return 0, storage.ErrNotFound
	}
	seq := int64(len(s.events[sessionID])) + 1
	s.events[sessionID] = append(s.events[sessionID], storage.StoredEvent{Seq: seq, Event: evt})
	return seq, nil
}

// ListEvents returns up to limit events with Seq > afterSeq in
// sequence order. A non-positive limit means no limit.
func (s *Store) ListEvents(ctx context.Context, sessionID string, afterSeq int64, limit int) ([]storage.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return nil, storage.ErrNotFound
	}
	log := s.events[sessionID]
	start := afterSeq
	if start < 0 {
		start = 0
	}
	if start >= int64(len(log)) {
		return nil, nil
	}
	page := log[start:]
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}
	out := make([]storage.StoredEvent, len(page))
	copy(out, page)
	return out, nil
}

// CountEvents returns the length of the session's event log.
func (s *Store) CountEvents(ctx context.Context, sessionID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return 0, storage.ErrNotFound
	}
	return int64(len(s.events[sessionID])), nil
}

// PutSnapshot stores the latest checkpoint for a session, replacing
// any older one.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[snapshot.SessionID]; !ok {
		return storage.ErrNotFound
	}
	if current, ok := s.snapshots[snapshot.SessionID]; ok && current.Seq >= snapshot.Seq {
		return nil
	}
	s.snapshots[snapshot.SessionID] = snapshot
	return nil
}

// LatestSnapshot returns the newest checkpoint for a session.
func (s *Store) LatestSnapshot(ctx context.Context, sessionID string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[sessionID]
	if !ok {
		return storage.Snapshot{}, storage.ErrNotFound
	}
	return snapshot, nil
}

// PutCharacter upserts one character in the registry.
func (s *Store) PutCharacter(ctx context.Context, character state.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if character.ID == "" {
		return fmt.Errorf("character id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.characters[character.ID] = character.Clone()
	return nil
}

// GetCharacter returns one character from the registry.
func (s *Store) GetCharacter(ctx context.Context, id string) (state.Character, error) {
	if err := ctx.Err(); err != nil {
		return state.Character{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	character, ok := s.characters[id]
	if !ok {
		return state.Character{}, storage.ErrNotFound
	}
	return character.Clone(), nil
}

// ListCharacters returns the registry ordered by id.
func (s *Store) ListCharacters(ctx context.Context) ([]state.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]state.Character, 0, len(s.characters))
	for _, character := range s.characters {
		out = append(out, character.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
