package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/service"
	"github.com/noah-isme/schedmate-api/internal/utils"
)

// AuthHandler exposes registration, login and logout.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches the public auth routes behind the given guards.
func (h *AuthHandler) Register(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/register", append(guards, h.register)...)
	router.Post("/login", append(guards, h.login)...)
}

// RegisterProtected attaches the auth routes that need a verified token.
func (h *AuthHandler) RegisterProtected(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/logout", append(guards, h.logout)...)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Register(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to register user")
	}

	return utils.Created(c, "user registered", response)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Login(c.UserContext(), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to log in")
	}

	return utils.SendSuccess(c, "login successful", response)
}

// Tokens are stateless; logout only acknowledges so clients can drop theirs.
func (h *AuthHandler) logout(c *fiber.Ctx) error {
	requestLogger(h.logger, c).Info().Uint("user_id", userIDFromContext(c)).Msg("user logged out")
	return utils.SendSuccess(c, "logged out", nil)
}
