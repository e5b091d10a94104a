package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/voyagemap/itinerary-sync/internal/core/domain"
)

// SyncRepository implements ports.SyncRepository over the user_records table.
type SyncRepository struct {
	store *Store
}

func NewSyncRepository(store *Store) *SyncRepository {
	return &SyncRepository{store: store}
}

// Get retrieves the record for userID. Each JSON column may be NULL
// independently of the other.
func (r *SyncRepository) Get(ctx context.Context, userID string) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var paris, london sql.NullString
	var updatedAt string
	err := r.store.db.QueryRowContext(ctx,
		`SELECT paris_data, london_data, updated_at FROM user_records WHERE user_id = ?`,
		userID,
	).Scan(&paris, &london, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, err
	}

	rec := &domain.UserRecord{UserID: userID, UpdatedAt: ts}
	if paris.Valid {
		rec.Paris = json.RawMessage(paris.String)
	}
	if london.Valid {
		rec.London = json.RawMessage(london.String)
	}
	return rec, nil
}

// Put inserts or fully replaces the record keyed by rec.UserID in a single
// statement, so concurrent writers to the same key resolve to last commit
// wins with no partial-column state.
func (r *SyncRepository) Put(ctx context.Context, rec *domain.UserRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.store.db.ExecContext(ctx,
		`INSERT INTO user_records (user_id, paris_data, london_data, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   paris_data  = excluded.paris_data,
		   london_data = excluded.london_data,
		   updated_at  = excluded.updated_at`,
		rec.UserID,
		nullableJSON(rec.Paris),
		nullableJSON(rec.London),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// CountUsers returns the number of stored records (one per identifier).
func (r *SyncRepository) CountUsers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_records`).Scan(&n)
	return n, err
}

// CountUpdatedSince returns how many records were written at or after since.
// RFC3339 UTC timestamps compare correctly as text.
func (r *SyncRepository) CountUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	err := r.store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_records WHERE updated_at >= ?`,
		since.UTC().Format(time.RFC3339),
	).Scan(&n)
	return n, err
}

// nullableJSON maps an absent payload to SQL NULL and a present one to TEXT.
func nullableJSON(raw json.RawMessage) any {
	if raw == nil {
		return nil
	}
	return string(raw)
}
