package ports

import (
	"context"
	"time"

	"github.com/voyagemap/itinerary-sync/internal/core/domain"
)

// SyncRepository defines persistence operations for user sync records.
// Implementations must treat Put as an atomic full replace: both JSON
// payloads and the timestamp are written in a single transaction, never a
// partial-column update.
type SyncRepository interface {
	// Get retrieves the record for userID. Returns domain.ErrRecordNotFound
	// when no record exists for the key.
	Get(ctx context.Context, userID string) (*domain.UserRecord, error)
	// Put inserts or fully replaces the record keyed by rec.UserID.
	Put(ctx context.Context, rec *domain.UserRecord) error
	// CountUsers returns the number of distinct identifiers ever written.
	CountUsers(ctx context.Context) (int64, error)
	// CountUpdatedSince returns how many records were written at or after since.
	CountUpdatedSince(ctx context.Context, since time.Time) (int64, error)
}
