package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Alexis-Lijeron/redes/internal/service"
)

type PublicationHandler struct {
	s service.PublicationService
}

func NewPublicationHandler(service service.PublicationService) *PublicationHandler {
	return &PublicationHandler{s: service}
}

// Retry re-enqueues a failed or pending publication. Processing and
// published publications are rejected with a 409.
func (h *PublicationHandler) Retry(c *fiber.Ctx) error {
	userID := GetUserID(c)
	publicationID := c.QueryInt("id", 0)

	pub, err := h.s.Retry(c.Context(), userID, int64(publicationID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(pub)
}
