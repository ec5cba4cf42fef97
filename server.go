package main

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"edadash/config"
	"edadash/middleware"
	"edadash/routes"
	"edadash/store"
)

// newApp builds the fiber application with every route registered.
func newApp(cfg config.Config, s *store.Store) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "edadash",
		// multipart overhead on top of the per-file cap
		BodyLimit:    cfg.MaxUploadBytes() + 1024*1024,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger)
	app.Use(cors.New())

	routes.SetupRoutes(app, s)
	return app
}

// errorHandler renders errors that escape a handler in the same shape as
// handler responses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		config.LogError(config.GetLogger(), "main", "errorHandler", c.Method()+" "+c.Path(), nil, err)
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "message": err.Error()})
}
