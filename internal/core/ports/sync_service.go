package ports

import (
	"context"
	"encoding/json"
	"time"
)

// SyncData is the full stored state for one user, as returned by Get.
type SyncData struct {
	Paris     json.RawMessage
	London    json.RawMessage
	UpdatedAt time.Time
}

// PutSyncInput carries a complete client state snapshot for one user.
// A nil payload field clears the stored value for that city — the write is
// a full overwrite, never a merge with previously stored data.
type PutSyncInput struct {
	UserID string
	Paris  json.RawMessage
	London json.RawMessage
}

// SyncStats is the aggregate view returned by Stats.
type SyncStats struct {
	UserCount      int64
	UpdatedLastDay int64
}

// SyncService defines the use-case operations behind the sync endpoints.
// All methods expect an already-normalized, validated user identifier;
// callers must reject invalid identifiers before reaching the service.
type SyncService interface {
	// GetUserData returns the stored state for userID, or (nil, nil) when the
	// user has never synced — a legitimate state, not an error.
	GetUserData(ctx context.Context, userID string) (*SyncData, error)
	// PutUserData replaces the user's stored state and returns the
	// server-assigned write timestamp.
	PutUserData(ctx context.Context, input PutSyncInput) (time.Time, error)
	// Stats returns aggregate counts over all stored records.
	Stats(ctx context.Context) (*SyncStats, error)
}
