package handlers

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Alexis-Lijeron/redes/internal/service"
)

type UploadHandler struct {
	s service.MediaService
}

func NewUploadHandler(service service.MediaService) *UploadHandler {
	return &UploadHandler{s: service}
}

// Upload stores one media file and returns the asset with its public URL,
// ready to pass as image_url on publish.
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	userID := GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse form",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to open uploaded file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to read uploaded file",
		})
	}

	asset, err := h.s.SaveUpload(c.Context(), userID, fileHeader.Filename, data)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(asset)
}

func (h *UploadHandler) ListAssets(c *fiber.Ctx) error {
	userID := GetUserID(c)

	assets, err := h.s.ListAssets(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list media assets",
		})
	}

	return c.Status(fiber.StatusOK).JSON(assets)
}
