package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voyagemap/itinerary-sync/internal/core/domain"
	"github.com/voyagemap/itinerary-sync/internal/core/ports"
	"github.com/voyagemap/itinerary-sync/internal/metrics"
)

// SyncHandler handles HTTP requests for the sync endpoint pair.
type SyncHandler struct {
	service ports.SyncService
}

func NewSyncHandler(service ports.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// userID normalizes and validates the path identifier. The store is never
// touched when validation fails.
func (h *SyncHandler) userID(c echo.Context) (string, bool) {
	id := domain.NormalizeUserID(c.Param("user_id"))
	if err := c.Validate(&syncParams{UserID: id}); err != nil {
		metrics.ValidationRejectionsTotal.Inc()
		return "", false
	}
	return id, true
}

// Get handles GET /api/sync/:user_id.
//
// @Summary      Fetch a user's synced itinerary data
// @Tags         sync
// @Produce      json
// @Param        user_id  path      string  true  "User identifier (normalized to [a-z0-9_-], 3-30 chars)"
// @Success      200      {object}  getSyncResponse
// @Failure      400      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Router       /api/sync/{user_id} [get]
func (h *SyncHandler) Get(c echo.Context) error {
	userID, ok := h.userID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
	}

	data, err := h.service.GetUserData(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if data == nil {
		// First-time user: a legitimate empty state, not an error.
		return c.JSON(http.StatusOK, getSyncResponse{Success: true, Data: nil})
	}

	return c.JSON(http.StatusOK, getSyncResponse{
		Success: true,
		Data: &syncDataPayload{
			Paris:     data.Paris,
			London:    data.London,
			UpdatedAt: data.UpdatedAt.UTC().Format(time.RFC3339),
		},
	})
}

// Put handles POST /api/sync/:user_id.
//
// The write replaces both stored payloads wholesale: a field the client omits
// is cleared, never preserved. Clients are expected to always send their
// complete current state.
//
// @Summary      Replace a user's synced itinerary data
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        user_id  path      string          true  "User identifier (normalized to [a-z0-9_-], 3-30 chars)"
// @Param        body     body      putSyncRequest  true  "Complete client state"
// @Success      200      {object}  putSyncResponse
// @Failure      400      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Router       /api/sync/{user_id} [post]
func (h *SyncHandler) Put(c echo.Context) error {
	userID, ok := h.userID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
	}

	var req putSyncRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	updatedAt, err := h.service.PutUserData(c.Request().Context(), ports.PutSyncInput{
		UserID: userID,
		Paris:  normalizeNull(req.Paris),
		London: normalizeNull(req.London),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, putSyncResponse{
		Success:   true,
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339),
	})
}
