package handlers

import (
	"prodcatalog/internal/log"
	"prodcatalog/internal/services"
	"prodcatalog/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	Profiles *services.ProfileService
}

// GET /users/:user_id/profile
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	raw := c.Params("user_id")
	id, ok := validate.UserID(raw)
	if !ok {
		log.Warn(c, "validation.fail", map[string]any{"field": "user_id", "value": raw})
		return validate.Fail("user_id", "gt", "user_id must be a positive integer")
	}
	p, err := h.Profiles.UserProfile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(p)
}
