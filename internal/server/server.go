// Package server assembles the Fiber application.
package server

import (
	"time"

	"productcatalog/internal/app"
	"productcatalog/internal/handlers"
	"productcatalog/internal/middleware"
	"productcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Options tunes NewApp.
type Options struct {
	// DisableRequestLog turns off the request logger middleware.
	DisableRequestLog bool
}

// NewApp registers every route for a.
func NewApp(a *app.App, opts Options) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		// Local uploads are received in one body.
		BodyLimit: services.MaxUploadSize + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	// --- Middleware ---
	if !opts.DisableRequestLog {
		fiberApp.Use(logger.New()) // Request logger
	}
	fiberApp.Use(middleware.CORS())

	guard := middleware.AuthRequired(a.AuthService)

	handlers.NewUploadHandler(a.UploadService).RegisterRoutes(fiberApp, guard)
	handlers.NewProductHandler(a.ProductService).RegisterRoutes(fiberApp, guard)

	if a.LocalStore != nil {
		handlers.NewLocalUploadHandler(a.LocalStore).RegisterRoutes(fiberApp)
	}

	// --- Health Check Endpoint ---
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		events := "disabled"
		if a.Events != nil {
			events = "connected"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"store":  a.Config.StoreDriver,
			"events": events,
		})
	})

	return fiberApp
}
