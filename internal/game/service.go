// Package game wires the event log, reducer, and resolvers into the
// engine's operations: session management, event appends, state
// queries, combat, and skill progression. All collaborators are
// injected so tests can pin clocks, ids, and random seeds.
package game

import (
	"context"
	stderrors "errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/duskhollow/engine/internal/combat"
	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/errors"
	"github.com/duskhollow/engine/internal/platform/id"
	"github.com/duskhollow/engine/internal/platform/random"
	"github.com/duskhollow/engine/internal/storage"
)

// defaultSnapshotInterval is how many events may accumulate past the
// latest snapshot before a state read writes a new one.
const defaultSnapshotInterval = 100

// listEventsPageSize bounds one storage page during replay loads.
const listEventsPageSize = 256

// Service implements the engine operations over injected storage.
type Service struct {
	store        storage.Store
	log          *zap.Logger
	clock        func() time.Time
	newEventID   func() string
	newSessionID func() string
	newSeed      func() int64

	strictReplay     bool
	snapshotInterval int64

	broadcast func(sessionID string, stored storage.StoredEvent)

	mu         sync.Mutex
	encounters map[string]*combat.Encounter
}

// Option configures a Service.
type Option func(*Service)

// WithClock pins the service clock.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithIDGenerators pins event and session id generation.
func WithIDGenerators(newEventID, newSessionID func() string) Option {
	return func(s *Service) {
		s.newEventID = newEventID
		s.newSessionID = newSessionID
	}
}

// WithSeedSource pins the seed source feeding combat and skill rolls.
func WithSeedSource(newSeed func() int64) Option {
	return func(s *Service) { s.newSeed = newSeed }
}

// WithStrictReplay makes state reads abort on events whose effects
// cannot apply, instead of skipping them.
func WithStrictReplay(strict bool) Option {
	return func(s *Service) { s.strictReplay = strict }
}

// WithSnapshotInterval overrides how often state reads checkpoint.
// Zero or negative disables snapshotting.
func WithSnapshotInterval(interval int64) Option {
	return func(s *Service) { s.snapshotInterval = interval }
}

// WithBroadcaster registers a hook invoked after every successful
// append, typically a websocket hub.
func WithBroadcaster(broadcast func(sessionID string, stored storage.StoredEvent)) Option {
	return func(s *Service) { s.broadcast = broadcast }
}

// NewService creates the engine service over the given store.
func NewService(store storage.Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:            store,
		log:              log,
		clock:            time.Now,
		newEventID:       id.NewEventID,
		newSessionID:     id.NewSessionID,
		newSeed:          random.NewSeed,
		snapshotInterval: defaultSnapshotInterval,
		encounters:       make(map[string]*combat.Encounter),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) rng() *rand.Rand {
	return rand.New(rand.NewSource(s.newSeed()))
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

// CreateSession creates a new append-only session for a campaign.
func (s *Service) CreateSession(ctx context.Context, campaign string) (storage.Session, error) {
	if campaign == "" {
		return storage.Session{}, errors.New(errors.CodeSessionCampaignRequired, "campaign is required")
	}
	session := storage.Session{
		ID:        s.newSessionID(),
		Campaign:  campaign,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		if stderrors.Is(err, storage.ErrAlreadyExists) {
			return storage.Session{}, errors.Wrap(errors.CodeSessionAlreadyExists, "session id collision", err)
		}
		return storage.Session{}, errors.Wrap(errors.CodeStorageFailure, "create session", err)
	}
	s.log.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("campaign", session.Campaign))
	return session, nil
}

// GetSession returns session metadata.
func (s *Service) GetSession(ctx context.Context, sessionID string) (storage.Session, error) {
	if sessionID == "" {
		return storage.Session{}, errors.New(errors.CodeSessionIDRequired, "session id is required")
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.Session{}, errors.WithMetadata(errors.CodeSessionNotFound, "session not found",
				map[string]string{"session_id": sessionID})
		}
		return storage.Session{}, errors.Wrap(errors.CodeStorageFailure, "get session", err)
	}
	return session, nil
}

// ListSessions returns all sessions.
func (s *Service) ListSessions(ctx context.Context) ([]storage.Session, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStorageFailure, "list sessions", err)
	}
	return sessions, nil
}

// AppendEvent validates and appends one event to a session log. A
// missing id or timestamp is stamped by the service; a schema-invalid
// event is rejected before it can reach the immutable log. The stored
// event is broadcast to subscribers after the append succeeds.
func (s *Service) AppendEvent(ctx context.Context, sessionID string, evt event.Event) (storage.StoredEvent, error) {
	if sessionID == "" {
		return storage.StoredEvent{}, errors.New(errors.CodeSessionIDRequired, "session id is required")
	}
	if evt.ID == "" {
		evt.ID = s.newEventID()
	}
	if evt.TS.IsZero() {
		evt.TS = s.now()
	}
	if err := event.Validate(evt); err != nil {
		return storage.StoredEvent{}, err
	}

	seq, err := s.store.AppendEvent(ctx, sessionID, evt)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return storage.StoredEvent{}, errors.WithMetadata(errors.CodeSessionNotFound, "session not found",
				map[string]string{"session_id": sessionID})
		}
		return storage.StoredEvent{}, errors.Wrap(errors.CodeStorageFailure, "append event", err)
	}
	stored := storage.StoredEvent{Seq: seq, Event: evt}

	s.log.Debug("event appended",
		zap.String("session_id", sessionID),
		zap.String("event_id", evt.ID),
		zap.String("type", string(evt.Type)),
		zap.Int64("seq", seq))
	if s.broadcast != nil {
		s.broadcast(sessionID, stored)
	}
	return stored, nil
}

// ListEvents returns a page of a session's event log.
func (s *Service) ListEvents(ctx context.Context, sessionID string, afterSeq int64, limit int) ([]storage.StoredEvent, error) {
	if sessionID == "" {
		return nil, errors.New(errors.CodeSessionIDRequired, "session id is required")
	}
	events, err := s.store.ListEvents(ctx, sessionID, afterSeq, limit)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, errors.WithMetadata(errors.CodeSessionNotFound, "session not found",
				map[string]string{"session_id": sessionID})
		}
		return nil, errors.Wrap(errors.CodeStorageFailure, "list events", err)
	}
	return events, nil
}
