package routes

import (
	"github.com/gofiber/fiber/v2"

	"edadash/handlers"
	"edadash/middleware"
	"edadash/store"
	"edadash/utils"
)

// SetupRoutes defines all the routes for the application.
func SetupRoutes(app *fiber.App, s *store.Store) {
	app.Get("/health", handlers.HandleHealth)
	app.Get("/version", handlers.HandleVersion)

	session := middleware.Session(s)
	app.Get("/", session, handlers.HandleDashboard)

	api := app.Group("/api/v1", session)
	api.Get("/modes", handlers.HandleGetModes)

	// --- Session uploads ---
	uploads := api.Group("/uploads")
	uploads.Get("/", handlers.HandleListUploads)
	uploads.Post("/:kind", handlers.HandleUpload)
	uploads.Delete("/:kind?", handlers.HandleDeleteUploads)

	// --- Analysis ---
	analysis := api.Group("/analysis", middleware.ResolveMode)
	analysis.Get("/", handlers.HandleGetAnalysis)
	analysis.Get("/treemaps", handlers.HandleGetTreemaps)
	analysis.Get("/export", handlers.HandleExportAnalysis)

	api.Get("/charts/:name", middleware.ResolveMode, handlers.HandleGetChart)

	// --- Dev mode only ---
	dev := api.Group("/dev", middleware.ResolveMode, middleware.CheckMode(utils.ModeDev))
	dev.Get("/files", handlers.HandleListDevFiles)
}
