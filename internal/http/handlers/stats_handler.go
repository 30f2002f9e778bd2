package handlers

import (
	"prodcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	Catalog *services.CatalogService
}

// GET /stats
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	s, err := h.Catalog.GetStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}
