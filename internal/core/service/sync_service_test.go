package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagemap/itinerary-sync/internal/core/domain"
	"github.com/voyagemap/itinerary-sync/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubSyncRepo struct {
	records map[string]*domain.UserRecord
	getErr  error // if set, Get returns this error
	putErr  error // if set, Put returns this error
}

func newStubSyncRepo() *stubSyncRepo {
	return &stubSyncRepo{records: make(map[string]*domain.UserRecord)}
}

func (r *stubSyncRepo) Get(_ context.Context, userID string) (*domain.UserRecord, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	rec, ok := r.records[userID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *stubSyncRepo) Put(_ context.Context, rec *domain.UserRecord) error {
	if r.putErr != nil {
		return r.putErr
	}
	clone := *rec
	r.records[rec.UserID] = &clone
	return nil
}

func (r *stubSyncRepo) CountUsers(_ context.Context) (int64, error) {
	if r.getErr != nil {
		return 0, r.getErr
	}
	return int64(len(r.records)), nil
}

func (r *stubSyncRepo) CountUpdatedSince(_ context.Context, since time.Time) (int64, error) {
	if r.getErr != nil {
		return 0, r.getErr
	}
	var n int64
	for _, rec := range r.records {
		if !rec.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// PutUserData tests
// ---------------------------------------------------------------------------

func TestSyncService_Put_ThenGet_RoundTrip(t *testing.T) {
	repo := newStubSyncRepo()
	svc := NewSyncService(repo, discardLogger)

	before := time.Now().UTC()
	ts, err := svc.PutUserData(context.Background(), ports.PutSyncInput{
		UserID: "alice",
		Paris:  json.RawMessage(`{"day1":"louvre"}`),
		London: json.RawMessage(`{"day1":"tate"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Before(before) {
		t.Errorf("updatedAt %v is older than the Put invocation time %v", ts, before)
	}

	data, err := svc.GetUserData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data == nil {
		t.Fatal("expected data after Put, got nil")
	}
	if string(data.Paris) != `{"day1":"louvre"}` {
		t.Errorf("paris payload mismatch: %s", data.Paris)
	}
	if string(data.London) != `{"day1":"tate"}` {
		t.Errorf("london payload mismatch: %s", data.London)
	}
	if !data.UpdatedAt.Equal(ts) {
		t.Errorf("Get returned updatedAt %v, Put returned %v", data.UpdatedAt, ts)
	}
}

func TestSyncService_Put_FullOverwrite_ClearsOmittedField(t *testing.T) {
	repo := newStubSyncRepo()
	svc := NewSyncService(repo, discardLogger)

	_, err := svc.PutUserData(context.Background(), ports.PutSyncInput{
		UserID: "alice",
		Paris:  json.RawMessage(`{"day1":"louvre"}`),
		London: json.RawMessage(`{"day1":"tate"}`),
	})
	if err != nil {
		t.Fatalf("first put failed: %v", err)
	}

	// Second write omits paris entirely: it must be cleared, not preserved.
	_, err = svc.PutUserData(context.Background(), ports.PutSyncInput{
		UserID: "alice",
		London: json.RawMessage(`{"day2":"camden"}`),
	})
	if err != nil {
		t.Fatalf("second put failed: %v", err)
	}

	data, err := svc.GetUserData(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Paris != nil {
		t.Errorf("expected paris cleared to nil, got %s", data.Paris)
	}
	if string(data.London) != `{"day2":"camden"}` {
		t.Errorf("london payload mismatch: %s", data.London)
	}
}

func TestSyncService_Put_TimestampAdvances(t *testing.T) {
	repo := newStubSyncRepo()
	svc := NewSyncService(repo, discardLogger)

	first, err := svc.PutUserData(context.Background(), ports.PutSyncInput{UserID: "bob"})
	if err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	second, err := svc.PutUserData(context.Background(), ports.PutSyncInput{UserID: "bob"})
	if err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	if second.Before(first) {
		t.Errorf("second write timestamp %v precedes first %v", second, first)
	}
}

func TestSyncService_Put_RepoError(t *testing.T) {
	repo := newStubSyncRepo()
	repo.putErr = errors.New("disk full")
	svc := NewSyncService(repo, discardLogger)

	_, err := svc.PutUserData(context.Background(), ports.PutSyncInput{UserID: "alice"})
	if err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetUserData tests
// ---------------------------------------------------------------------------

func TestSyncService_Get_UnknownUser_ReturnsNilNotError(t *testing.T) {
	repo := newStubSyncRepo()
	svc := NewSyncService(repo, discardLogger)

	data, err := svc.GetUserData(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("first-time user must not be an error, got %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil data for unknown user, got %+v", data)
	}
}

func TestSyncService_Get_RepoError(t *testing.T) {
	repo := newStubSyncRepo()
	repo.getErr = errors.New("db locked")
	svc := NewSyncService(repo, discardLogger)

	_, err := svc.GetUserData(context.Background(), "alice")
	if err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}

// ---------------------------------------------------------------------------
// Stats tests
// ---------------------------------------------------------------------------

func TestSyncService_Stats_CountsDistinctUsers(t *testing.T) {
	repo := newStubSyncRepo()
	svc := NewSyncService(repo, discardLogger)

	for _, id := range []string{"alice", "bob", "carol"} {
		if _, err := svc.PutUserData(context.Background(), ports.PutSyncInput{UserID: id}); err != nil {
			t.Fatalf("put %s failed: %v", id, err)
		}
	}
	// Re-writing an existing user must not inflate the count.
	if _, err := svc.PutUserData(context.Background(), ports.PutSyncInput{UserID: "alice"}); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.UserCount != 3 {
		t.Errorf("expected 3 users, got %d", stats.UserCount)
	}
	if stats.UpdatedLastDay != 3 {
		t.Errorf("expected 3 recent updates, got %d", stats.UpdatedLastDay)
	}
}

func TestSyncService_Stats_RepoError(t *testing.T) {
	repo := newStubSyncRepo()
	repo.getErr = errors.New("db gone")
	svc := NewSyncService(repo, discardLogger)

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected error when repo fails, got nil")
	}
}
