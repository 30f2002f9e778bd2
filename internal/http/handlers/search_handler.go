package handlers

import (
	"prodcatalog/internal/domain"
	"prodcatalog/internal/log"
	"prodcatalog/internal/services"
	"prodcatalog/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /products/search
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	q := domain.SearchQuery{Page: domain.DefaultPage, Limit: domain.DefaultLimit}
	if err := c.QueryParser(&q); err != nil {
		log.Warn(c, "validation.fail", map[string]any{"field": "query", "err": err.Error()})
		return validate.Fail("query", "parse", "query parameters are malformed")
	}
	params, err := validate.Search(q)
	if err != nil {
		return err
	}
	page, err := h.Catalog.SearchProducts(c.UserContext(), params)
	if err != nil {
		return err
	}
	return c.JSON(page)
}
