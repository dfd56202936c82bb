package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
)

// ListAmenities handles GET /amenities.
func (h *Handler) ListAmenities(c echo.Context) error { return list[*model.Amenity](c, h) }

// GetAmenity handles GET /amenities/:amenity_id.
func (h *Handler) GetAmenity(c echo.Context) error {
	return show[*model.Amenity](c, h, "amenity_id")
}

// DeleteAmenity handles DELETE /amenities/:amenity_id and unlinks it from
// every place.
func (h *Handler) DeleteAmenity(c echo.Context) error {
	return remove[*model.Amenity](c, h, "amenity_id")
}

// CreateAmenity handles POST /amenities.
func (h *Handler) CreateAmenity(c echo.Context) error {
	var in nameInput
	body, ok, err := h.readCreate(c, &in)
	if !ok {
		return err
	}
	a := &model.Amenity{}
	if err := body.decodeInto(a); err != nil {
		return badInput(c, err)
	}
	return h.insert(c, a, "")
}

// UpdateAmenity handles PUT /amenities/:amenity_id.
func (h *Handler) UpdateAmenity(c echo.Context) error {
	return update[*model.Amenity](c, h, "amenity_id")
}
