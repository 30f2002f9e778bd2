package handlers

import (
	applog "prodcatalog/internal/log"
	"prodcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	Catalog *services.CatalogService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats, err := h.Catalog.GetStats(ctx)
	if err != nil {
		applog.Error(c, "admin.stats.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{"Message": "Could not load catalog stats"})
	}
	cats, err := h.Catalog.ListCategories(ctx)
	if err != nil {
		applog.Error(c, "admin.categories.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{"Message": "Could not load categories"})
	}
	page, err := h.Catalog.ListProducts(ctx, 1, 10, nil)
	if err != nil {
		applog.Error(c, "admin.products.fail", err, nil)
		return c.Status(fiber.StatusServiceUnavailable).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":      stats,
		"Categories": cats,
		"Products":   page.Products,
	})
}
