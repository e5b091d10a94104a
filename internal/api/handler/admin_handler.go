package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/voyagemap/itinerary-sync/internal/core/ports"
)

// AdminHandler serves the (rate-limited, unauthenticated) admin endpoints.
type AdminHandler struct {
	service ports.SyncService
}

func NewAdminHandler(service ports.SyncService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Stats handles GET /api/admin/stats.
//
// @Summary      Aggregate usage counters
// @Tags         admin
// @Produce      json
// @Success      200  {object}  statsResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statsResponse{
		UserCount:      stats.UserCount,
		UpdatedLastDay: stats.UpdatedLastDay,
	})
}
