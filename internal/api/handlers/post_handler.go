package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Alexis-Lijeron/redes/internal/repository"
	"github.com/Alexis-Lijeron/redes/internal/service"
	"github.com/Alexis-Lijeron/redes/internal/transfer"
)

type PostHandler struct {
	s  service.PostService
	a  service.AdaptationService
	pb service.PublicationService
}

func NewPostHandler(
	postService service.PostService,
	adaptationService service.AdaptationService,
	publicationService service.PublicationService) *PostHandler {
	return &PostHandler{
		s:  postService,
		a:  adaptationService,
		pb: publicationService,
	}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	post, err := h.s.CreatePost(c.Context(), userID, &pc)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	if postID != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postID), userID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(post)
	}

	filter := repository.PostFilter{
		Status: c.Query("status"),
		Skip:   c.QueryInt("skip", 0),
		Limit:  c.QueryInt("limit", 20),
	}

	posts, err := h.s.List(c.Context(), userID, filter)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// Adapt rewrites the post's content per network and creates a pending
// publication for each one. With preview_only set it returns the adapted
// text without persisting anything.
func (h *PostHandler) Adapt(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.AdaptRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	result, err := h.a.Adapt(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *PostHandler) Publish(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse json",
		})
	}

	result, err := h.pb.Publish(c.Context(), userID, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(result)
}

func (h *PostHandler) PublicationStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID := c.QueryInt("id", 0)

	summary, err := h.pb.Status(c.Context(), userID, int64(postID))
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}
