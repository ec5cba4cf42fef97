package handlers

import (
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"edadash/config"
	"edadash/middleware"
	"edadash/models"
)

var validate = validator.New()

const kindRule = "required,oneof=sales_history item_categories category_names test submission"

// HandleListUploads reports which inputs the session holds.
func HandleListUploads(c *fiber.Ctx) error {
	ws, ok := middleware.Workspace(c)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "No session"})
	}
	return c.JSON(fiber.Map{"success": true, "data": ws.Status()})
}

// HandleUpload stores one input file in the session workspace.
func HandleUpload(c *fiber.Ctx) error {
	ws, ok := middleware.Workspace(c)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "No session"})
	}

	if err := validate.Var(c.Params("kind"), kindRule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Unknown input kind"})
	}
	kind, _ := models.ParseInputKind(c.Params("kind"))

	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Missing multipart field 'file'"})
	}
	if fh.Size > int64(config.AppConfig.MaxUploadBytes()) {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"success": false,
			"message": "File exceeds upload limit",
			"data":    fiber.Map{"limitMB": config.AppConfig.MaxUploadMB},
		})
	}

	f, err := fh.Open()
	if err != nil {
		config.LogError(config.GetLogger(), "handlers", "HandleUpload", "open multipart file", kind, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to read upload"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		config.LogError(config.GetLogger(), "handlers", "HandleUpload", "read multipart file", kind, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to read upload"})
	}

	ws.Put(kind, fh.Filename, data)
	config.GetLogger().Infof("📤 [UPLOAD] Session %s stored %s (%s, %d bytes)", ws.ID, kind, fh.Filename, len(data))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": kind.Label() + " uploaded",
		"data":    ws.Status(),
	})
}

// HandleDeleteUploads drops one upload, or all of them when no kind is given.
func HandleDeleteUploads(c *fiber.Ctx) error {
	ws, ok := middleware.Workspace(c)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "No session"})
	}

	if c.Params("kind") == "" {
		ws.Clear()
		config.GetLogger().Infof("🗑️ [UPLOAD] Session %s cleared all uploads", ws.ID)
		return c.JSON(fiber.Map{"success": true, "message": "All uploads removed", "data": ws.Status()})
	}

	if err := validate.Var(c.Params("kind"), kindRule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Unknown input kind"})
	}
	kind, _ := models.ParseInputKind(c.Params("kind"))
	ws.Remove(kind)
	config.GetLogger().Infof("🗑️ [UPLOAD] Session %s removed %s", ws.ID, kind)
	return c.JSON(fiber.Map{"success": true, "message": kind.Label() + " removed", "data": ws.Status()})
}
