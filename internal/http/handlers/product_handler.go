package handlers

import (
	"prodcatalog/internal/domain"
	"prodcatalog/internal/log"
	"prodcatalog/internal/services"
	"prodcatalog/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q := domain.ListQuery{Page: domain.DefaultPage, Limit: domain.DefaultLimit}
	if err := c.QueryParser(&q); err != nil {
		log.Warn(c, "validation.fail", map[string]any{"field": "query", "err": err.Error()})
		return validate.Fail("query", "parse", "query parameters are malformed")
	}
	if err := validate.Struct(q); err != nil {
		return err
	}
	page, err := h.Catalog.ListProducts(c.UserContext(), q.Page, q.Limit, q.CategoryID)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

// GET /products/:asin
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	asin, err := pathASIN(c)
	if err != nil {
		return err
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), asin)
	if err != nil {
		return err
	}
	return c.JSON(p)
}

// POST /products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req domain.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn(c, "validation.fail", map[string]any{"field": "body", "err": err.Error()})
		return validate.Fail("body", "json", "request body must be a JSON product")
	}
	p, err := h.Catalog.CreateProduct(c.UserContext(), req)
	if err != nil {
		return err
	}
	log.Audit(c, "product.create", map[string]any{"asin": p.ASIN, "category_id": p.CategoryID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /products/:asin
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	asin, err := pathASIN(c)
	if err != nil {
		return err
	}
	var req domain.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Warn(c, "validation.fail", map[string]any{"field": "body", "err": err.Error()})
		return validate.Fail("body", "json", "request body must be a JSON product")
	}
	p, err := h.Catalog.UpdateProduct(c.UserContext(), asin, req)
	if err != nil {
		return err
	}
	log.Audit(c, "product.update", map[string]any{"asin": asin})
	return c.JSON(p)
}

// DELETE /products/:asin
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	asin, err := pathASIN(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), asin); err != nil {
		return err
	}
	log.Audit(c, "product.delete", map[string]any{"asin": asin})
	return c.JSON(fiber.Map{"message": "product deleted", "asin": asin})
}

func pathASIN(c *fiber.Ctx) (string, error) {
	raw := c.Params("asin")
	asin, ok := validate.ASIN(raw)
	if !ok {
		log.Warn(c, "validation.fail", map[string]any{"field": "asin", "value": raw})
		return "", validate.Fail("asin", "asin", "asin must be 1-20 letters or digits")
	}
	return asin, nil
}
