package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Alexis-Lijeron/redes/internal/service"
)

func GetUserID(c *fiber.Ctx) int64 {
	userID, _ := strconv.Atoi(c.Locals("user_id").(string))
	return int64(userID)
}

// serviceError maps the service layer's sentinel errors onto HTTP statuses.
// Unknown errors stay a 500 with a generic message.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	case errors.Is(err, service.ErrPublicationNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Publication not found",
		})
	case errors.Is(err, service.ErrNoPublications):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post has no publications, adapt it first",
		})
	case errors.Is(err, service.ErrRetryConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Publication is not in a retryable state",
		})
	case errors.Is(err, service.ErrInvalidNetwork):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
}
