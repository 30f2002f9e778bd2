package handlers

import (
	"context"
	"time"

	"prodcatalog/internal/log"
	"prodcatalog/internal/repos"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

type HealthHandler struct {
	DB *sqlx.DB
}

// GET /health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	body := fiber.Map{
		"status":       "healthy",
		"db_connected": true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	if err := repos.Ping(ctx, h.DB); err != nil {
		log.Error(c, "health.db.fail", err, nil)
		body["status"] = "unhealthy"
		body["db_connected"] = false
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}
