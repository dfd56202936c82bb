package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

// ListCities handles GET /states/:state_id/cities.
func (h *Handler) ListCities(c echo.Context) error {
	ctx := c.Request().Context()
	st, err := storage.Get[*model.State](ctx, h.Store, c.Param("state_id"))
	if err != nil {
		return h.fail(c, err)
	}
	cities, err := h.Rel.CitiesOfState(ctx, st)
	if err != nil {
		return h.fail(c, err)
	}
	return respondList(c, h, cities)
}

// GetCity handles GET /cities/:city_id.
func (h *Handler) GetCity(c echo.Context) error { return show[*model.City](c, h, "city_id") }

// DeleteCity handles DELETE /cities/:city_id.
func (h *Handler) DeleteCity(c echo.Context) error { return remove[*model.City](c, h, "city_id") }

// CreateCity handles POST /states/:state_id/cities. The state comes from
// the path; a state_id in the body is ignored.
func (h *Handler) CreateCity(c echo.Context) error {
	st, err := storage.Get[*model.State](c.Request().Context(), h.Store, c.Param("state_id"))
	if err != nil {
		return h.fail(c, err)
	}
	var in nameInput
	body, ok, err := h.readCreate(c, &in)
	if !ok {
		return err
	}
	city := &model.City{}
	if err := body.decodeInto(city); err != nil {
		return badInput(c, err)
	}
	city.StateID = st.ID
	return h.insert(c, city, st.ID)
}

// UpdateCity handles PUT /cities/:city_id. A city cannot change state.
func (h *Handler) UpdateCity(c echo.Context) error {
	return update[*model.City](c, h, "city_id", "state_id")
}
