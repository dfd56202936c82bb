package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
)

// Status handles GET /status.
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
}

// Stats handles GET /stats and reports the number of stored objects of each
// kind keyed by collection name.
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	out := make(map[string]int, len(model.Kinds))
	for _, k := range model.Kinds {
		n, err := h.Store.Count(ctx, k)
		if err != nil {
			return h.fail(c, err)
		}
		out[k.Collection()] = n
	}
	return c.JSON(http.StatusOK, out)
}
