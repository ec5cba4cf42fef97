package main

import (
	"edadash/config"
	"edadash/loader"
	"edadash/store"
)

func main() {
	logger := config.GetLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize session store
	store.Init(cfg.SessionLimit)
	defer store.Close()

	logger.WithFields(map[string]any{
		"dataDir":      cfg.DataDir,
		"devAvailable": loader.DevModeAvailable(cfg.DataDir),
		"fixDevMode":   cfg.FixDevMode,
		"forceNormal":  cfg.ForceNormalMode,
		"priorYear":    cfg.PriorYear,
	}).Info("Starting dashboard")

	app := newApp(cfg, store.GetStore())

	// Start server
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
