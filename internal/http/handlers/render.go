package handlers

import "github.com/gofiber/fiber/v2"

// render fills the fields every page layout reads and renders tmpl.
func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if rid, ok := c.Locals("requestid").(string); ok {
		data["RequestID"] = rid
	}
	return c.Render(tmpl, data)
}

// NotImplemented answers routes kept for clients of the removed
// recommendation engine.
func NotImplemented(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotImplemented, "recommendations are not available")
}
