// Package http assembles the Fiber application: middleware, the JSON error
// surface and the route table.
package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"prodcatalog/internal/config"
	"prodcatalog/internal/http/handlers"
	applog "prodcatalog/internal/log"
	"prodcatalog/web"
)

const bodyLimit = 1 << 20 // 1 MiB

// NewApp builds the catalog API over db.
func NewApp(db *sqlx.DB, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "prodcatalog",
		Views:        web.Engine(),
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(applog.Start())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-Request-ID",
	}))
	if cfg.RateLimitPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMin,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/health")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Warn(c, "rate.limit.hit", nil)
				return writeError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded, retry soon", nil)
			},
		}))
	}

	Routes(app, handlers.NewDeps(db))
	return app
}

// Routes registers every endpoint. The fixed /products/... paths precede
// /products/:asin so "search" is never taken for an asin.
func Routes(app *fiber.App, deps *handlers.Deps) {
	app.Get("/health", deps.HealthHandler.Health)

	app.Get("/products", deps.ProductHandler.List)
	app.Get("/products/search", deps.SearchHandler.Search)
	app.Get("/products/top-recommended", handlers.NotImplemented)
	app.Get("/products/:asin", deps.ProductHandler.Get)
	app.Get("/products/:asin/recommended-to", handlers.NotImplemented)
	app.Post("/products", deps.ProductHandler.Create)
	app.Put("/products/:asin", deps.ProductHandler.Update)
	app.Delete("/products/:asin", deps.ProductHandler.Delete)

	app.Get("/categories", deps.CategoryHandler.List)
	app.Get("/stats", deps.StatsHandler.Stats)
	app.Get("/users/:user_id/profile", deps.UserHandler.Profile)

	// recommendation engine surface, not served here
	for _, p := range []string{
		"/recommend/:user_id", "/recommend/:user_id/*",
		"/recommendations", "/recommendations/*",
		"/similar-users", "/similar-users/*",
		"/model/reload",
	} {
		app.All(p, handlers.NotImplemented)
	}

	app.Get("/admin", deps.AdminHandler.Dashboard)
}
