package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/queue"
	"github.com/iliyamo/rental-api/internal/relation"
	"github.com/iliyamo/rental-api/internal/storage"
)

// ListPlaceAmenities handles GET /places/:place_id/amenities.
func (h *Handler) ListPlaceAmenities(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := storage.Get[*model.Place](ctx, h.Store, c.Param("place_id"))
	if err != nil {
		return h.fail(c, err)
	}
	amenities, err := h.Rel.AmenitiesOfPlace(ctx, p)
	if err != nil {
		return h.fail(c, err)
	}
	return respondList(c, h, amenities)
}

// placeAndAmenity resolves both path ids.
func (h *Handler) placeAndAmenity(c echo.Context) (*model.Place, *model.Amenity, error) {
	ctx := c.Request().Context()
	p, err := storage.Get[*model.Place](ctx, h.Store, c.Param("place_id"))
	if err != nil {
		return nil, nil, err
	}
	a, err := storage.Get[*model.Amenity](ctx, h.Store, c.Param("amenity_id"))
	if err != nil {
		return nil, nil, err
	}
	return p, a, nil
}

// LinkPlaceAmenity handles POST /places/:place_id/amenities/:amenity_id.
// It answers 201 for a new link and 200 when the pair was already linked.
func (h *Handler) LinkPlaceAmenity(c echo.Context) error {
	p, a, err := h.placeAndAmenity(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	status, err := h.Rel.LinkAmenity(ctx, p, a)
	if err != nil {
		return h.fail(c, err)
	}
	if status == relation.AlreadyLinked {
		return h.respond(c, http.StatusOK, a)
	}
	h.publish(ctx, queue.ActionLinked, a, p.ID)
	return h.respond(c, http.StatusCreated, a)
}

// UnlinkPlaceAmenity handles DELETE /places/:place_id/amenities/:amenity_id.
// The amenity itself is kept.
func (h *Handler) UnlinkPlaceAmenity(c echo.Context) error {
	p, a, err := h.placeAndAmenity(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	if err := h.Rel.UnlinkAmenity(ctx, p, a); err != nil {
		return h.fail(c, err)
	}
	h.publish(ctx, queue.ActionUnlinked, a, p.ID)
	return c.JSON(http.StatusOK, map[string]any{})
}
