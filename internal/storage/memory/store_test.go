package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/duskhollow/engine/internal/event"
	"github.com/duskhollow/engine/internal/state"
	"github.com/duskhollow/engine/internal/storage"
)

func newSession(t *testing.T, s *Store, id string) storage.Session {
	t.Helper()
	session := storage.Session{
		ID:        id,
		Campaign:  "dusk-hollow",
		CreatedAt: time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("create session %s: %v", id, err)
	}
	return session
}

func TestSessionRoundTrip(t *testing.T) {
	s := New()
	want := newSession(t, s, "s_abcdef123456")

	got, err := s.GetSession(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got != want {
		t.Fatalf("GetSession = %+v, want %+v", got, want)
	}
}

func TestCreateSessionDuplicate(t *testing.T) {
	s := New()
	session := newSession(t, s, "s_abcdef123456")
	err := s.CreateSession(context.Background(), session)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate create error = %v, want ErrAlreadyExists", err)
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := New()
	_, err := s.GetSession(context.Background(), "s_missing00000")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAppendAndListEvents(t *testing.T) {
	s := New()
	session := newSession(t, s, "s_abcdef123456")

	for i := 0; i < 5; i++ {
		evt := event.Event{ID: "e_aaaaaaaa", Type: event.TypeNote}
		seq, err := s.AppendEvent(context.Background(), session.ID, evt)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if seq != int64(i)+1 {
			t.Fatalf("seq = %d, want %d", seq, i+1)
		}
	}

	page, err := s.ListEvents(context.Background(), session.ID, 2, 2)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(page) != 2 || page[0].Seq != 3 || page[1].Seq != 4 {
		t.Fatalf("page = %+v", page)
	}

	all, err := s.ListEvents(context.Background(), session.ID, 0, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("len(all) = %d, want 5", len(all))
	}

	count, err := s.CountEvents(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestAppendEventMissingSession(t *testing.T) {
	s := New()
	_, err := s.AppendEvent(context.Background(), "s_missing00000", event.Event{ID: "e_aaaaaaaa"})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestConcurrentAppendsAssignUniqueSeqs(t *testing.T) {
	s := New()
	session := newSession(t, s, "s_abcdef123456")

	const writers = 20
	seqs := make(chan int64, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.AppendEvent(context.Background(), session.ID, event.Event{ID: "e_aaaaaaaa", Type: event.TypeNote})
			if err != nil {
				t.Errorf("append: %v", err)
				return
			}
			seqs <- seq
		}()
	}
	wg.Wait()
	close(seqs)

	seen := map[int64]bool{}
	for seq := range seqs {
		if seen[seq] {
			t.Fatalf("duplicate seq %d", seq)
		}
		seen[seq] = true
	}
	if len(seen) != writers {
		t.Fatalf("got %d unique seqs, want %d", len(seen), writers)
	}
}

func TestListSessionsOrdered(t *testing.T) {
	s := New()
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"s_ccc000000000", "s_aaa000000000", "s_bbb000000000"} {
		err := s.CreateSession(context.Background(), storage.Session{
			ID:        id,
			CreatedAt: base.Add(time.Duration(-i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	sessions, err := s.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("len = %d, want 3", len(sessions))
	}
	for i := 1; i < len(sessions); i++ {
		if sessions[i].CreatedAt.Before(sessions[i-1].CreatedAt) {
			t.Fatalf("sessions out of order: %+v", sessions)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	session := newSession(t, s, "s_abcdef123456")

	snap := storage.Snapshot{
		SessionID: session.ID,
		Seq:       7,
		State:     json.RawMessage(`{"characters":{}}`),
		CreatedAt: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
	if err := s.PutSnapshot(context.Background(), snap); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}

	got, err := s.LatestSnapshot(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if got.Seq != 7 {
		t.Fatalf("Seq = %d, want 7", got.Seq)
	}

	// Older checkpoints do not replace newer ones.
	stale := snap
	stale.Seq = 3
	if err := s.PutSnapshot(context.Background(), stale); err != nil {
		t.Fatalf("put stale snapshot: %v", err)
	}
	got, err = s.LatestSnapshot(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if got.Seq != 7 {
		t.Fatalf("stale snapshot replaced newer one: Seq = %d", got.Seq)
	}
}

func TestCharacterRegistry(t *testing.T) {
	s := New()
	ada := state.Character{
		ID:        "ada",
		Name:      "Ada",
		HP:        state.HP{Max: 40, Current: 40},
		Inventory: []string{"rope"},
	}
	if err := s.PutCharacter(context.Background(), ada); err != nil {
		t.Fatalf("put character: %v", err)
	}

	got, err := s.GetCharacter(context.Background(), "ada")
	if err != nil {
		t.Fatalf("get character: %v", err)
	}
	if got.Name != "Ada" || got.HP.Max != 40 {
		t.Fatalf("GetCharacter = %+v", got)
	}

	// The stored copy is isolated from caller mutation.
	got.Inventory[0] = "mutated"
	again, err := s.GetCharacter(context.Background(), "ada")
	if err != nil {
		t.Fatalf("get character again: %v", err)
	}
	if again.Inventory[0] != "rope" {
		t.Fatalf("stored character aliased caller slice: %+v", again)
	}

	if _, err := s.GetCharacter(context.Background(), "ghost"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing character error = %v, want ErrNotFound", err)
	}

	if err := s.PutCharacter(context.Background(), state.Character{ID: "brin"}); err != nil {
		t.Fatalf("put second: %v", err)
	}
	list, err := s.ListCharacters(context.Background())
	if err != nil {
		t.Fatalf("list characters: %v", err)
	}
	if len(list) != 2 || list[0].ID != "ada" || list[1].ID != "brin" {
		t.Fatalf("ListCharacters = %+v", list)
	}
}

func TestSnapshotMissing(t *testing.T) {
	s := New()
	newSession(t, s, "s_abcdef123456")
	_, err := s.LatestSnapshot(context.Background(), "s_abcdef123456")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}
