package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/middleware"
	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/service"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// ClassHandler serves class creation, joining and membership listing.
type ClassHandler struct {
	service service.EnrollmentService
	logger  zerolog.Logger
}

// NewClassHandler constructs the handler.
func NewClassHandler(service service.EnrollmentService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// Register attaches class routes to the router group.
func (h *ClassHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.WithAuth(h.create, middleware.AuthOptions{Role: models.RoleTeacher}))
	router.Post("/join", h.join)
}

func (h *ClassHandler) list(c *fiber.Ctx) error {
	classes, err := h.service.ListClasses(c.UserContext(), actorFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list classes")
	}

	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	class, err := h.service.CreateClass(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create class")
	}

	return utils.Created(c, "class created", class)
}

func (h *ClassHandler) join(c *fiber.Ctx) error {
	var payload dto.JoinClassRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	joined, err := h.service.JoinClass(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to join class")
	}

	return utils.SendSuccess(c, "joined class", joined)
}
