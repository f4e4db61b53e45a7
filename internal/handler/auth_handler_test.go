package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/handler"
	"github.com/noah-isme/schedmate-api/internal/service"
)

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	h := handler.NewAuthHandler(svc, zerolog.Nop())
	auth := app.Group("/api/v1/auth")
	h.Register(auth)
	h.RegisterProtected(auth, withActor(1, "student"))
	return app
}

func TestAuthHandlerRegister(t *testing.T) {
	svc := &stubAuthService{response: dto.AuthResponse{Token: "signed", UserID: 1, Role: "student", ExpiresAt: time.Now().Add(time.Hour)}}
	app := newAuthApp(svc)

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "sari",
		"email":    "sari@example.com",
		"password": "secret123",
		"role":     "murid",
	}))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Data dto.AuthResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "signed", payload.Data.Token)
}

func TestAuthHandlerLoginErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: service.ErrInvalidCredentials, status: fiber.StatusUnauthorized},
		{err: service.ErrUserNotFound, status: fiber.StatusNotFound},
		{err: service.ErrUserExists, status: fiber.StatusConflict},
	}

	for _, tc := range cases {
		app := newAuthApp(&stubAuthService{err: tc.err})
		resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "sari@example.com",
			"password": "wrong-pass",
		}))
		require.Equal(t, tc.status, resp.StatusCode)
	}
}

func TestAuthHandlerRejectsMalformedBody(t *testing.T) {
	app := newAuthApp(&stubAuthService{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", nil)
	req.Body = http.NoBody
	req.Header.Set("Content-Type", "text/plain")
	resp := perform(t, app, req)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandlerLogout(t *testing.T) {
	app := newAuthApp(&stubAuthService{})

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
