// Package storage defines persistence contracts for sessions and their
// event logs. Implementations live in subpackages: memory for tests
// and ephemeral runs, sqlite for durable single-node deployments.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/state"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a create collided with an existing record.
var ErrAlreadyExists = errors.New("record already exists")

// Session is one append-only game log with its metadata.
type Session struct {
	ID        string
	Campaign  string
	CreatedAt time.Time
}

// StoredEvent pairs an event with the sequence number the store
// assigned on append. Seq starts at 1 and is gapless per session.
type StoredEvent struct {
	Seq   int64
	Event event.Event
}

// Snapshot is a reduced-state checkpoint taken after Seq events, used
// as a replay base so reads do not fold the whole log every time.
type Snapshot struct {
	SessionID string
	Seq       int64
	State     json.RawMessage
	CreatedAt time.Time
}

// SessionStore persists session metadata.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
}

// EventStore persists per-session ordered event logs.
//
// AppendEvent assigns the next sequence number under a per-session
// serialization guarantee: two concurrent appends to the same session
// never receive the same Seq, and a reader never observes a partially
// appended event.
type EventStore interface {
	AppendEvent(ctx context.Context, sessionID string, evt event.Event) (int64, error)
	ListEvents(ctx context.Context, sessionID string, afterSeq int64, limit int) ([]StoredEvent, error)
	CountEvents(ctx context.Context, sessionID string) (int64, error)
}

// SnapshotStore persists replay-base checkpoints.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snapshot Snapshot) error
	LatestSnapshot(ctx context.Context, sessionID string) (Snapshot, error)
}

// CharacterStore persists the character registry that seeds the base
// state before replay. Characters are global, not session-scoped, so
// the same party can appear across sessions.
type CharacterStore interface {
	PutCharacter(ctx context.Context, character state.Character) error
	GetCharacter(ctx context.Context, id string) (state.Character, error)
	ListCharacters(ctx context.Context) ([]state.Character, error)
}

// Store is the full persistence surface the game service depends on.
type Store interface {
	SessionStore
	EventStore
	SnapshotStore
	CharacterStore
}
