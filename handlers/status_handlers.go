package handlers

import (
	"os"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"

	"edadash/config"
	"edadash/loader"
	"edadash/middleware"
	"edadash/models"
)

// HandleHealth is the liveness probe.
func HandleHealth(c *fiber.Ctx) error {
	return c.SendString("ok")
}

// HandleVersion prints the build information of the binary.
func HandleVersion(c *fiber.Ctx) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return c.Status(fiber.StatusInternalServerError).SendString("no build information available")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTML)
	return c.SendString("<pre>\n" + info.String() + "</pre>\n")
}

// HandleGetModes tells the dashboard whether dev mode can be offered.
func HandleGetModes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": middleware.Modes(config.AppConfig)})
}

// HandleListDevFiles lists the fixed input files of the data directory.
func HandleListDevFiles(c *fiber.Ctx) error {
	src := loader.DirSource{Dir: config.AppConfig.DataDir}
	files := make([]models.UploadedFile, 0, len(models.AllKinds))
	for _, k := range models.AllKinds {
		f := models.UploadedFile{
			Kind:     k,
			Label:    k.Label(),
			FileName: src.Path(k),
			Required: k != models.KindSubmission,
		}
		if st, err := os.Stat(src.Path(k)); err == nil && !st.IsDir() {
			f.Present = true
			f.Size = int(st.Size())
		}
		files = append(files, f)
	}
	return c.JSON(fiber.Map{"success": true, "data": files})
}
