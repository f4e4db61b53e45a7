package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedmate-api/internal/middleware"
	"github.com/noah-isme/schedmate-api/internal/models"
)

func TestWithAuth(t *testing.T) {
	cases := []struct {
		name   string
		userID interface{}
		role   string
		opts   middleware.AuthOptions
		status int
	}{
		{name: "student allowed", userID: uint(10), role: "Student", opts: middleware.AuthOptions{Role: models.RoleStudent}, status: fiber.StatusNoContent},
		{name: "unknown role denied", userID: uint(10), role: "guest", opts: middleware.AuthOptions{Role: models.RoleStudent}, status: fiber.StatusForbidden},
		{name: "legacy teacher name", userID: uint(1), role: "guru", opts: middleware.AuthOptions{Role: models.RoleTeacher}, status: fiber.StatusNoContent},
		{name: "student on teacher route", userID: uint(2), role: "student", opts: middleware.AuthOptions{Role: models.RoleTeacher}, status: fiber.StatusForbidden},
		{name: "role implies user", role: "teacher", opts: middleware.AuthOptions{Role: models.RoleTeacher}, status: fiber.StatusUnauthorized},
		{name: "zero user id", userID: uint(0), role: "teacher", opts: middleware.AuthOptions{RequireUser: true}, status: fiber.StatusUnauthorized},
		{name: "any authenticated", userID: uint(3), opts: middleware.AuthOptions{RequireUser: true}, status: fiber.StatusNoContent},
		{name: "public", opts: middleware.AuthOptions{}, status: fiber.StatusNoContent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				if tc.userID != nil {
					c.Locals("user_id", tc.userID)
				}
				if tc.role != "" {
					c.Locals("user_role", tc.role)
				}
				return c.Next()
			})
			app.Post("/classes", middleware.WithAuth(func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusNoContent)
			}, tc.opts))

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/classes", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
