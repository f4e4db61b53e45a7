package handler_test

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedmate-api/internal/dto"
	"github.com/noah-isme/schedmate-api/internal/handler"
	"github.com/noah-isme/schedmate-api/internal/service"
)

type mockUploadService struct {
	lastUserID  uint
	lastPurpose string
	response    dto.UploadResponse
	err         error
}

func (m *mockUploadService) Upload(_ context.Context, userID uint, purpose string, file *multipart.FileHeader) (dto.UploadResponse, error) {
	if file != nil {
		if _, err := file.Open(); err != nil {
			return dto.UploadResponse{}, err
		}
	}
	m.lastUserID = userID
	m.lastPurpose = purpose
	if m.err != nil {
		return dto.UploadResponse{}, m.err
	}
	return m.response, nil
}

func newUploadApp(svc service.UploadService) *fiber.App {
	app := fiber.New()
	group := app.Group("/api/v1/uploads", withActor(7, "student"))
	handler.NewUploadHandler(svc, zerolog.New(io.Discard)).Register(group)
	return app
}

func TestUploadHandler_Success(t *testing.T) {
	svc := &mockUploadService{response: dto.UploadResponse{URL: "https://cdn.example.com/file.png", SizeBytes: 123, MimeType: "image/png", Checksum: "abc", FileName: "file.png"}}
	app := newUploadApp(svc)

	req := multipartRequest(t, http.MethodPost, "/api/v1/uploads", map[string]string{"purpose": "photo"}, "photo.png", []byte("png"))
	resp := perform(t, app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool               `json:"success"`
		Data    dto.UploadResponse `json:"data"`
		Message string             `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "upload successful", response.Message)
	require.Equal(t, uint(7), svc.lastUserID)
	require.Equal(t, "photo", svc.lastPurpose)
	require.Equal(t, svc.response.URL, response.Data.URL)
}

func TestUploadHandler_DefaultsToEvidence(t *testing.T) {
	svc := &mockUploadService{}
	app := newUploadApp(svc)

	resp := perform(t, app, multipartRequest(t, http.MethodPost, "/api/v1/uploads", nil, "report.pdf", []byte("pdf")))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "evidence", svc.lastPurpose)
}

func TestUploadHandler_RejectsUnknownPurpose(t *testing.T) {
	app := newUploadApp(&mockUploadService{})

	resp := perform(t, app, multipartRequest(t, http.MethodPost, "/api/v1/uploads", map[string]string{"purpose": "avatar"}, "a.png", []byte("png")))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadHandler_MissingFile(t *testing.T) {
	app := newUploadApp(&mockUploadService{})

	resp := perform(t, app, jsonRequest(t, http.MethodPost, "/api/v1/uploads", nil))
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "too_large", err: service.ErrUploadTooLarge, statusCode: fiber.StatusRequestEntityTooLarge},
		{name: "type", err: service.ErrUploadTypeNotAllowed, statusCode: fiber.StatusBadRequest},
		{name: "scan", err: service.ErrUploadScanFailed, statusCode: fiber.StatusBadRequest},
		{name: "storage", err: errors.Join(service.ErrUpstream, errors.New("bucket offline")), statusCode: fiber.StatusBadGateway},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newUploadApp(&mockUploadService{err: tc.err})

			req := multipartRequest(t, http.MethodPost, "/api/v1/uploads", nil, "doc.pdf", []byte("pdf"))
			resp := perform(t, app, req)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}
