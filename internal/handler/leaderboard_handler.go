package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/service"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// LeaderboardHandler serves class rankings.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches the leaderboard route to the classes group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/:classId/leaderboard", h.get)
}

func (h *LeaderboardHandler) get(c *fiber.Ctx) error {
	classID, err := parseUintParam(c, "classId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	board, err := h.service.Leaderboard(c.UserContext(), classID)
	if err != nil {
		return respondError(c, h.logger, err, "failed to load leaderboard")
	}

	return utils.SendSuccess(c, "leaderboard retrieved", board)
}
