package handler

import (
	"bytes"
	"encoding/json"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// syncParams carries the normalized path identifier through validation.
// The userid rule asserts the final form: [a-z0-9_-], length 3-30.
type syncParams struct {
	UserID string `param:"user_id" validate:"required,userid"`
}

// putSyncRequest is the complete client state snapshot. Each payload is
// opaque JSON the server stores without interpretation; an absent field
// clears the stored value.
type putSyncRequest struct {
	Paris  json.RawMessage `json:"paris"`
	London json.RawMessage `json:"london"`
}

// syncDataPayload mirrors the stored record on the wire. Absent payloads
// render as JSON null.
type syncDataPayload struct {
	Paris     json.RawMessage `json:"paris"`
	London    json.RawMessage `json:"london"`
	UpdatedAt string          `json:"updatedAt"`
}

type getSyncResponse struct {
	Success bool             `json:"success"`
	Data    *syncDataPayload `json:"data"`
}

type putSyncResponse struct {
	Success   bool   `json:"success"`
	UpdatedAt string `json:"updatedAt"`
}

type statsResponse struct {
	UserCount      int64 `json:"userCount"`
	UpdatedLastDay int64 `json:"updatedLastDay"`
}

var jsonNull = []byte("null")

// normalizeNull folds an explicit JSON null into an absent payload so both
// spellings store the same way.
func normalizeNull(raw json.RawMessage) json.RawMessage {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil
	}
	return raw
}
