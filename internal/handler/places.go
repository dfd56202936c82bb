package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/search"
	"github.com/iliyamo/rental-api/internal/storage"
)

type placeInput struct {
	UserID *string `json:"user_id" validate:"required"`
	Name   *string `json:"name" validate:"required"`
}

// ListPlaces handles GET /cities/:city_id/places.
func (h *Handler) ListPlaces(c echo.Context) error {
	ctx := c.Request().Context()
	city, err := storage.Get[*model.City](ctx, h.Store, c.Param("city_id"))
	if err != nil {
		return h.fail(c, err)
	}
	places, err := h.Rel.PlacesOfCity(ctx, city)
	if err != nil {
		return h.fail(c, err)
	}
	return respondList(c, h, places)
}

// GetPlace handles GET /places/:place_id.
func (h *Handler) GetPlace(c echo.Context) error { return show[*model.Place](c, h, "place_id") }

// DeletePlace handles DELETE /places/:place_id.
func (h *Handler) DeletePlace(c echo.Context) error {
	return remove[*model.Place](c, h, "place_id")
}

// CreatePlace handles POST /cities/:city_id/places. The body must name an
// existing user and a name; checks run in that order so an unknown user is
// reported before a missing name.
func (h *Handler) CreatePlace(c echo.Context) error {
	ctx := c.Request().Context()
	city, err := storage.Get[*model.City](ctx, h.Store, c.Param("city_id"))
	if err != nil {
		return h.fail(c, err)
	}
	var in placeInput
	body, ok, err := h.readCreate(c, &in, "UserID")
	if !ok {
		return err
	}
	if _, err := storage.Get[*model.User](ctx, h.Store, *in.UserID); err != nil {
		return h.fail(c, err)
	}
	if field, miss := h.missing(&in, "Name"); miss {
		return missingField(c, field)
	}
	p := &model.Place{}
	if err := body.decodeInto(p); err != nil {
		return badInput(c, err)
	}
	p.CityID = city.ID
	return h.insert(c, p, city.ID)
}

// UpdatePlace handles PUT /places/:place_id. Owner and city are fixed.
func (h *Handler) UpdatePlace(c echo.Context) error {
	return update[*model.Place](c, h, "place_id", "city_id", "user_id")
}

// SearchPlaces handles POST /places_search. The body is a search.Filter;
// an empty object returns every place. Results omit amenities.
func (h *Handler) SearchPlaces(c echo.Context) error {
	body, ok := readObject(c)
	if !ok {
		return badRequest(c, msgNotJSON)
	}
	var f search.Filter
	if err := body.decodeInto(&f); err != nil {
		return badInput(c, err)
	}
	places, err := h.Search.Search(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, err)
	}
	out, err := publicDicts(places)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
