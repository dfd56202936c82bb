package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rental-api/internal/model"
)

type userInput struct {
	Email    *string `json:"email" validate:"required"`
	Password *string `json:"password" validate:"required"`
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c echo.Context) error { return list[*model.User](c, h) }

// GetUser handles GET /users/:user_id.
func (h *Handler) GetUser(c echo.Context) error { return show[*model.User](c, h, "user_id") }

// DeleteUser handles DELETE /users/:user_id, removing the user's places and
// reviews as well.
func (h *Handler) DeleteUser(c echo.Context) error { return remove[*model.User](c, h, "user_id") }

// CreateUser handles POST /users. The password is stored as a bcrypt hash.
func (h *Handler) CreateUser(c echo.Context) error {
	var in userInput
	body, ok, err := h.readCreate(c, &in)
	if !ok {
		return err
	}
	u := &model.User{}
	if err := body.decodeInto(u); err != nil {
		return badInput(c, err)
	}
	return h.insert(c, u, "")
}

// UpdateUser handles PUT /users/:user_id. The email is fixed at creation.
func (h *Handler) UpdateUser(c echo.Context) error {
	return update[*model.User](c, h, "user_id", "email")
}
