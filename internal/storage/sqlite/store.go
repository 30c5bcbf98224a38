// Package sqlite provides a SQLite-backed storage implementation for
// sessions, event logs, and snapshots.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/platform/storage/sqlitemigrate"
	"github.com/duskhollow/engine/internal/state"
	"github.com/duskhollow/engine/internal/storage"
	"github.com/duskhollow/engine/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists sessions and their event logs in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at the provided path and applies embedded
// migrations. WAL mode and a busy timeout keep concurrent readers and
// the single writer from tripping over each other.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateSession inserts session metadata, rejecting duplicate ids.
func (s *Store) CreateSession(ctx context.Context, session storage.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sessions (id, campaign, created_at) VALUES (?, ?, ?)`,
		session.ID,
		session.Campaign,
		toMillis(session.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns session metadata by id.
func (s *Store) GetSession(ctx context.Context, id string) (storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return storage.Session{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Session{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, campaign, created_at FROM sessions WHERE id = ?`,
		id,
	)
	var session storage.Session
	var createdAt int64
	if err := row.Scan(&session.ID, &session.Campaign, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Session{}, storage.ErrNotFound
		}
		return storage.Session{}, fmt.Errorf("get session: %w", err)
	}
	session.CreatedAt = fromMillis(createdAt)
	return session, nil
}

// ListSessions returns all sessions ordered by creation time, then id.
func (s *Store) ListSessions(ctx context.Context) ([]storage.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, campaign, created_at FROM sessions ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []storage.Session
	for rows.Next() {
		var session storage.Session
		var createdAt int64
		if err := rows.Scan(&session.ID, &session.Campaign, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.CreatedAt = fromMillis(createdAt)
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// AppendEvent appends one event to the session log and returns its
// sequence number. The sequence is assigned inside a transaction so
// concurrent appends to the same session serialize cleanly.
func (s *Store) AppendEvent(ctx context.Context, sessionID string, evt event.Event) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("check session: %w", err)
	}

	var seq int64
	err = tx.QueryRowContext(
		ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE session_id = ?`,
		sessionID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO events (session_id, seq, event_id, ts, event_type, actor, target, data, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		seq,
		evt.ID,
		toMillis(evt.TS),
		string(evt.Type),
		evt.Actor,
		evt.Target,
		string(evt.Data),
		string(evt.Result),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return seq, nil
}

// ListEvents returns up to limit events with seq > afterSeq in
// sequence order. A non-positive limit means no limit.
func (s *Store) ListEvents(ctx context.Context, sessionID string, afterSeq int64, limit int) ([]storage.StoredEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	query := `SELECT seq, event_id, ts, event_type, actor, target, data, result
		 FROM events WHERE session_id = ? AND seq > ? ORDER BY seq`
	args := []any{sessionID, afterSeq}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []storage.StoredEvent
	for rows.Next() {
		var stored storage.StoredEvent
		var ts int64
		var eventType, data, result string
		if err := rows.Scan(
			&stored.Seq,
			&stored.Event.ID,
			&ts,
			&eventType,
			&stored.Event.Actor,
			&stored.Event.Target,
			&data,
			&result,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		stored.Event.TS = fromMillis(ts)
		stored.Event.Type = event.Type(eventType)
		if data != "" {
			stored.Event.Data = json.RawMessage(data)
		}
		if result != "" {
			stored.Event.Result = json.RawMessage(result)
		}
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// CountEvents returns the number of events in the session log.
func (s *Store) CountEvents(ctx context.Context, sessionID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}
	var count int64
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM events WHERE session_id = ?`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// PutSnapshot stores the latest checkpoint for a session. Older or
// equal sequence numbers are ignored so snapshotting is idempotent.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.GetSession(ctx, snapshot.SessionID); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO snapshots (session_id, seq, state, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   seq = excluded.seq,
		   state = excluded.state,
		   created_at = excluded.created_at
		 WHERE excluded.seq > snapshots.seq`,
		snapshot.SessionID,
		snapshot.Seq,
		string(snapshot.State),
		toMillis(snapshot.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest checkpoint for a session.
func (s *Store) LatestSnapshot(ctx context.Context, sessionID string) (storage.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Snapshot{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT session_id, seq, state, created_at FROM snapshots WHERE session_id = ?`,
		sessionID,
	)
	var snapshot storage.Snapshot
	var state string
	var createdAt int64
	if err := row.Scan(&snapshot.SessionID, &snapshot.Seq, &state, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	snapshot.State = json.RawMessage(state)
	snapshot.CreatedAt = fromMillis(createdAt)
	return snapshot, nil
}

// PutCharacter upserts one character in the registry. The full
// character is stored as a JSON document so the schema does not chase
// every character field.
func (s *Store) PutCharacter(ctx context.Context, character state.Character) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(character.ID) == "" {
		return fmt.Errorf("character id is required")
	}
	doc, err := json.Marshal(character)
	if err != nil {
		return fmt.Errorf("encode character: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO characters (id, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   doc = excluded.doc,
		   updated_at = excluded.updated_at`,
		character.ID,
		string(doc),
		toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("put character: %w", err)
	}
	return nil
}

// GetCharacter returns one character from the registry.
func (s *Store) GetCharacter(ctx context.Context, id string) (state.Character, error) {
	if err := ctx.Err(); err != nil {
		return state.Character{}, err
	}
	if s == nil || s.sqlDB == nil {
		return state.Character{}, fmt.Errorf("storage is not configured")
	}
	var doc string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT doc FROM characters WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return state.Character{}, storage.ErrNotFound
		}
		return state.Character{}, fmt.Errorf("get character: %w", err)
	}
	var character state.Character
	if err := json.Unmarshal([]byte(doc), &character); err != nil {
		return state.Character{}, fmt.Errorf("decode character %s: %w", id, err)
	}
	return character, nil
}

// ListCharacters returns the registry ordered by id.
func (s *Store) ListCharacters(ctx context.Context) ([]state.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT id, doc FROM characters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	var out []state.Character
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		var character state.Character
		if err := json.Unmarshal([]byte(doc), &character); err != nil {
			return nil, fmt.Errorf("decode character %s: %w", id, err)
		}
		out = append(out, character)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate characters: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
