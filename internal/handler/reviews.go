package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
	"github.com/iliyamo/rental-api/internal/storage"
)

type reviewInput struct {
	UserID *string `json:"user_id" validate:"required"`
	Text   *string `json:"text" validate:"required"`
}

// ListReviews handles GET /places/:place_id/reviews.
func (h *Handler) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := storage.Get[*model.Place](ctx, h.Store, c.Param("place_id"))
	if err != nil {
		return h.fail(c, err)
	}
	reviews, err := h.Rel.ReviewsOfPlace(ctx, p)
	if err != nil {
		return h.fail(c, err)
	}
	return respondList(c, h, reviews)
}

// GetReview handles GET /reviews/:review_id.
func (h *Handler) GetReview(c echo.Context) error { return show[*model.Review](c, h, "review_id") }

// DeleteReview handles DELETE /reviews/:review_id.
func (h *Handler) DeleteReview(c echo.Context) error {
	return remove[*model.Review](c, h, "review_id")
}

// CreateReview handles POST /places/:place_id/reviews.
func (h *Handler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := storage.Get[*model.Place](ctx, h.Store, c.Param("place_id"))
	if err != nil {
		return h.fail(c, err)
	}
	var in reviewInput
	body, ok, err := h.readCreate(c, &in, "UserID")
	if !ok {
		return err
	}
	if _, err := storage.Get[*model.User](ctx, h.Store, *in.UserID); err != nil {
		return h.fail(c, err)
	}
	if field, miss := h.missing(&in, "Text"); miss {
		return missingField(c, field)
	}
	r := &model.Review{}
	if err := body.decodeInto(r); err != nil {
		return badInput(c, err)
	}
	r.PlaceID = p.ID
	return h.insert(c, r, p.ID)
}

// UpdateReview handles PUT /reviews/:review_id. Only the text can change.
func (h *Handler) UpdateReview(c echo.Context) error {
	return update[*model.Review](c, h, "review_id", "place_id", "user_id")
}
