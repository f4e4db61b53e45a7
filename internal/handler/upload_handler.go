package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/models"
	"github.com/noah-isme/schedmate-api/internal/service"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// UploadHandler stores a file ahead of attaching its URL elsewhere.
type UploadHandler struct {
	service service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		service: service,
		logger:  logger.With().Str("component", "upload_handler").Logger(),
	}
}

// Register wires upload routes.
func (h *UploadHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
}

func (h *UploadHandler) upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	purpose := strings.ToLower(strings.TrimSpace(c.FormValue("purpose")))
	switch purpose {
	case "":
		purpose = models.UploadPurposeEvidence
	case models.UploadPurposeEvidence, models.UploadPurposePhoto:
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "purpose must be evidence or photo")
	}

	result, err := h.service.Upload(c.UserContext(), userIDFromContext(c), purpose, file)
	if err != nil {
		return respondError(c, h.logger, err, "upload failed")
	}

	return utils.SendSuccess(c, "upload successful", result)
}
