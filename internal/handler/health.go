package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
)

// Health answers "ok" when the storage backend responds to a count of
// states and 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
	if _, err := h.Store.Count(c.Request().Context(), model.KindState); err != nil {
		return c.String(http.StatusServiceUnavailable, "storage unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
