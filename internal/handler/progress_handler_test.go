package handler_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/handler"
	"github.com/noah-isme/schedmate-api/internal/service"
)

func newProgressApp(svc *stubProgressService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/tasks", withActor(21, "student"))
	handler.NewProgressHandler(svc, zerolog.Nop()).Register(group)
	return app
}

func TestProgressHandlerMultipartWithEvidence(t *testing.T) {
	svc := &stubProgressService{response: dto.ProgressResponse{TaskID: 4, UserID: 21, Progress: "2"}}
	app := newProgressApp(svc)

	fields := map[string]string{"progress": "2", "end_time": "2026-10-20 10:00"}
	resp := perform(t, app, multipartRequest(t, http.MethodPut, "/api/v1/tasks/4/progress", fields, "proof.pdf", []byte("%PDF-1.4")))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, uint(4), svc.lastTaskID)
	require.Equal(t, "2", svc.lastRequest.Progress)
	require.NotNil(t, svc.lastRequest.EndTime)
	require.Equal(t, "2026-10-20 10:00", *svc.lastRequest.EndTime)
	require.Nil(t, svc.lastRequest.StartTime)
	require.NotNil(t, svc.lastEvidence)

	file, err := svc.lastEvidence.Open()
	require.NoError(t, err)
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(content))
}

func TestProgressHandlerJSONWithoutEvidence(t *testing.T) {
	svc := &stubProgressService{}
	app := newProgressApp(svc)

	resp := perform(t, app, jsonRequest(t, http.MethodPut, "/api/v1/tasks/4/progress", map[string]string{
		"progress":   "1",
		"start_time": "2026-10-20T08:00:00Z",
	}))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "1", svc.lastRequest.Progress)
	require.Nil(t, svc.lastEvidence)
}

func TestProgressHandlerErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{name: "invalid_state", err: service.ErrInvalidProgress, status: fiber.StatusBadRequest},
		{name: "end_before_start", err: service.ErrEndBeforeStart, status: fiber.StatusBadRequest},
		{name: "missing_task", err: service.ErrTaskNotFound, status: fiber.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newProgressApp(&stubProgressService{err: tc.err})
			resp := perform(t, app, jsonRequest(t, http.MethodPut, "/api/v1/tasks/4/progress", map[string]string{"progress": "5"}))
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.err.Error(), errorMessage(t, resp))
		})
	}
}
