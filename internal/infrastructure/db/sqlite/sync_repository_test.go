package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/voyagemap/itinerary-sync/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_Open_AppliesPragmas(t *testing.T) {
	store := openTestStore(t)

	var mode string
	if err := store.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var timeout int
	if err := store.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if timeout != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", timeout)
	}
}

func TestSyncRepository_Get_Missing(t *testing.T) {
	repo := NewSyncRepository(openTestStore(t))

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSyncRepository_Put_ThenGet(t *testing.T) {
	repo := NewSyncRepository(openTestStore(t))

	now := time.Now().UTC().Truncate(time.Second)
	rec := &domain.UserRecord{
		UserID:    "alice",
		Paris:     json.RawMessage(`{"day1":"louvre"}`),
		UpdatedAt: now,
	}
	if err := repo.Put(context.Background(), rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Paris) != `{"day1":"louvre"}` {
		t.Errorf("paris payload mismatch: %s", got.Paris)
	}
	if got.London != nil {
		t.Errorf("expected london NULL, got %s", got.London)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("updated_at mismatch: got %v, want %v", got.UpdatedAt, now)
	}
}

func TestSyncRepository_Put_ReplacesWholeRecord(t *testing.T) {
	repo := NewSyncRepository(openTestStore(t))
	ctx := context.Background()

	first := &domain.UserRecord{
		UserID:    "alice",
		Paris:     json.RawMessage(`{"day1":"louvre"}`),
		London:    json.RawMessage(`{"day1":"tate"}`),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Put(ctx, first); err != nil {
		t.Fatalf("first put: %v", err)
	}

	second := &domain.UserRecord{
		UserID:    "alice",
		London:    json.RawMessage(`{"day2":"camden"}`),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Put(ctx, second); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Paris != nil {
		t.Errorf("paris must be cleared on overwrite, got %s", got.Paris)
	}
	if string(got.London) != `{"day2":"camden"}` {
		t.Errorf("london payload mismatch: %s", got.London)
	}
}

func TestSyncRepository_Counts(t *testing.T) {
	repo := NewSyncRepository(openTestStore(t))
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()

	puts := []*domain.UserRecord{
		{UserID: "alice", UpdatedAt: recent},
		{UserID: "bob", UpdatedAt: old},
		{UserID: "carol", UpdatedAt: recent},
	}
	for _, rec := range puts {
		if err := repo.Put(ctx, rec); err != nil {
			t.Fatalf("put %s: %v", rec.UserID, err)
		}
	}
	// Overwriting an existing key must not create a second row.
	if err := repo.Put(ctx, &domain.UserRecord{UserID: "alice", UpdatedAt: recent}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	users, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != 3 {
		t.Errorf("expected 3 users, got %d", users)
	}

	lastDay, err := repo.CountUpdatedSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("count updated since: %v", err)
	}
	if lastDay != 2 {
		t.Errorf("expected 2 recent records, got %d", lastDay)
	}
}

func TestSyncRepository_ConcurrentPuts_SameKey(t *testing.T) {
	repo := NewSyncRepository(openTestStore(t))
	ctx := context.Background()

	const writers = 8
	done := make(chan error, writers)
	for i := 0; i < writers; i++ {
		payload := json.RawMessage(fmt.Sprintf(`{"writer":%d}`, i))
		go func(p json.RawMessage) {
			done <- repo.Put(ctx, &domain.UserRecord{
				UserID:    "alice",
				Paris:     p,
				UpdatedAt: time.Now().UTC(),
			})
		}(payload)
	}
	for i := 0; i < writers; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent put: %v", err)
		}
	}

	// Whichever writer committed last, the record must be intact, never a
	// corrupted mix of writes.
	got, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get after concurrent puts: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(got.Paris, &decoded); err != nil {
		t.Fatalf("stored payload is not valid JSON: %v", err)
	}
	if _, ok := decoded["writer"]; !ok {
		t.Errorf("unexpected payload after concurrent puts: %s", got.Paris)
	}
}

func TestSyncRepository_ConcurrentPuts_DistinctKeys(t *testing.T) {
	repo := NewSyncRepository(openTestStore(t))
	ctx := context.Background()

	// Writers to different keys never conflict at the application level;
	// every put must succeed, with lock contention absorbed by busy_timeout.
	const writers = 20
	const putsEach = 10

	var wg sync.WaitGroup
	errs := make(chan error, writers*putsEach)
	for i := 0; i < writers; i++ {
		userID := fmt.Sprintf("user-%02d", i)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < putsEach; j++ {
				errs <- repo.Put(ctx, &domain.UserRecord{
					UserID:    id,
					Paris:     json.RawMessage(fmt.Sprintf(`{"rev":%d}`, j)),
					UpdatedAt: time.Now().UTC(),
				})
			}
		}(userID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent put to distinct key failed: %v", err)
		}
	}

	users, err := repo.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users != writers {
		t.Errorf("expected %d users, got %d", writers, users)
	}
}
