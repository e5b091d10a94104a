package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// UserID length bounds after normalization.
const (
	UserIDMinLen = 3
	UserIDMaxLen = 30
)

var ErrInvalidUserID = errors.New("invalid user id")
var ErrRecordNotFound = errors.New("record not found")

// UserRecord is the single persisted entity: one row per user, two opaque
// JSON payloads and the timestamp of the last accepted write.
//
// Paris and London are never parsed beyond syntactic JSON validity at the
// transport layer; the server treats them as raw bytes. A nil payload means
// the client has no data for that city.
type UserRecord struct {
	UserID    string
	Paris     json.RawMessage
	London    json.RawMessage
	UpdatedAt time.Time
}

// NormalizeUserID lowercases the raw identifier and strips every character
// outside [a-z0-9_-]. It performs no length check; pair it with ValidUserID.
// Normalization is idempotent: normalizing an already-normalized identifier
// returns it unchanged.
func NormalizeUserID(raw string) string {
	lowered := strings.ToLower(raw)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidUserID reports whether id is an acceptable normalized identifier:
// only [a-z0-9_-] and length within [UserIDMinLen, UserIDMaxLen].
func ValidUserID(id string) bool {
	if len(id) < UserIDMinLen || len(id) > UserIDMaxLen {
		return false
	}
	for _, r := range id {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			continue
		}
		return false
	}
	return true
}
