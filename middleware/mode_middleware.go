package middleware

import (
	"github.com/gofiber/fiber/v2"

	"edadash/config"
	"edadash/loader"
	"edadash/models"
	"edadash/utils"
)

const (
	localMode    = "mode"
	localVariant = "variant"
)

// Modes reports which modes the dashboard may offer under cfg.
func Modes(cfg config.Config) models.ModeInfo {
	available := !cfg.ForceNormalMode && loader.DevModeAvailable(cfg.DataDir)
	info := models.ModeInfo{DevAvailable: available, Default: utils.ModeNormal}
	if available {
		info.Default = utils.ModeDev
		info.Fixed = cfg.FixDevMode
	}
	return info
}

// ResolveMode validates the mode and variant query parameters and stores them
// in Locals. Dev mode is refused when it is not offered; a fixed dev mode
// overrides whatever the client asked for.
func ResolveMode(c *fiber.Ctx) error {
	info := Modes(config.AppConfig)

	mode, ok := utils.ValidateAndNormalizeMode(c.Query("mode", info.Default))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid mode"})
	}
	if info.Fixed {
		mode = utils.ModeDev
	}
	if mode == utils.ModeDev && !info.DevAvailable {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Dev mode is not available"})
	}

	variant, ok := utils.ValidateAndNormalizeVariant(c.Query("variant"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid variant"})
	}

	c.Locals(localMode, mode)
	c.Locals(localVariant, variant)
	return c.Next()
}

// CheckMode is a middleware that only lets the given modes through.
func CheckMode(modes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		mode, ok := c.Locals(localMode).(string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Mode not resolved"})
		}
		for _, m := range modes {
			if mode == m {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"success": false, "message": "Not allowed in " + mode + " mode"})
	}
}

// Mode returns the resolved mode and variant.
func Mode(c *fiber.Ctx) (mode, variant string) {
	mode, _ = c.Locals(localMode).(string)
	variant, _ = c.Locals(localVariant).(string)
	return mode, variant
}
