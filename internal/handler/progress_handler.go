package handler

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/service"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// ProgressHandler records per-user task progress, optionally with evidence.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs the handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches progress routes to the tasks group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Put("/:id/progress", h.update)
}

func (h *ProgressHandler) update(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ProgressUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	var evidence *multipart.FileHeader
	if file, err := c.FormFile("file"); err == nil {
		evidence = file
	}

	progress, err := h.service.Upsert(c.UserContext(), actorFromContext(c), taskID, payload, evidence)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update progress")
	}

	return utils.SendSuccess(c, "progress updated", progress)
}
