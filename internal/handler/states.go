package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
)

// nameInput is the create body of the kinds that only require a name.
type nameInput struct {
	Name *string `json:"name" validate:"required"`
}

// ListStates handles GET /states.
func (h *Handler) ListStates(c echo.Context) error { return list[*model.State](c, h) }

// GetState handles GET /states/:state_id.
func (h *Handler) GetState(c echo.Context) error { return show[*model.State](c, h, "state_id") }

// DeleteState handles DELETE /states/:state_id. The state's cities and
// everything below them go with it.
func (h *Handler) DeleteState(c echo.Context) error {
	return remove[*model.State](c, h, "state_id")
}

// CreateState handles POST /states.
func (h *Handler) CreateState(c echo.Context) error {
	var in nameInput
	body, ok, err := h.readCreate(c, &in)
	if !ok {
		return err
	}
	st := &model.State{}
	if err := body.decodeInto(st); err != nil {
		return badInput(c, err)
	}
	return h.insert(c, st, "")
}

// UpdateState handles PUT /states/:state_id.
func (h *Handler) UpdateState(c echo.Context) error {
	return update[*model.State](c, h, "state_id")
}
