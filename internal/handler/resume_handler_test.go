package handler_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/handler"
	"github.com/noah-isme/mock-interview-api/internal/service"
)

type resumeServiceStub struct {
	payload   dto.ResumeCreateRequest
	fileBytes []byte
	sawFile   bool
	deletedID uint
	deleteErr error
}

func (s *resumeServiceStub) Upload(_ context.Context, _ uint, payload dto.ResumeCreateRequest, file *multipart.FileHeader) (dto.ResumeResponse, error) {
	s.payload = payload
	if file == nil {
		return dto.ResumeResponse{}, service.ErrFileRequired
	}
	s.sawFile = true
	handle, err := file.Open()
	if err != nil {
		return dto.ResumeResponse{}, err
	}
	defer handle.Close()
	s.fileBytes, _ = io.ReadAll(handle)
	return dto.ResumeResponse{ID: 3, JobRole: payload.JobRole, FileName: file.Filename}, nil
}

func (s *resumeServiceStub) List(context.Context, uint) ([]dto.ResumeResponse, error) {
	return []dto.ResumeResponse{}, nil
}

func (s *resumeServiceStub) Delete(_ context.Context, _ uint, id uint) error {
	s.deletedID = id
	return s.deleteErr
}

func newResumeApp(svc service.ResumeService) *fiber.App {
	app := fiber.New()
	handler.NewResumeHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/jobresume", withUser(3)))
	return app
}

func multipartRequest(t *testing.T, withFile bool) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("jobRole", "Data Engineer"))
	require.NoError(t, writer.WriteField("jobDescription", "Pipelines"))
	if withFile {
		part, err := writer.CreateFormFile("resume", "cv.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobresume", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestResumeUploadMultipart(t *testing.T) {
	svc := &resumeServiceStub{}
	app := newResumeApp(svc)

	resp, err := app.Test(multipartRequest(t, true), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, svc.sawFile)
	require.Equal(t, "Data Engineer", svc.payload.JobRole)
	require.Equal(t, "Pipelines", svc.payload.JobDescription)
	require.Equal(t, []byte("%PDF-1.4 test"), svc.fileBytes)
}

func TestResumeUploadWithoutFile(t *testing.T) {
	app := newResumeApp(&resumeServiceStub{})

	resp, err := app.Test(multipartRequest(t, false), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var payload envelope
	decodeResponse(t, resp, &payload)
	require.Equal(t, "resume file is required", payload.Message)
}

func TestResumeDelete(t *testing.T) {
	svc := &resumeServiceStub{}
	app := newResumeApp(svc)

	resp := doJSON(t, app, http.MethodDelete, "/api/v1/jobresume/9", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(9), svc.deletedID)

	resp = doJSON(t, app, http.MethodDelete, "/api/v1/jobresume/nine", nil)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	svc.deleteErr = service.ErrResumeNotOwned
	resp = doJSON(t, app, http.MethodDelete, "/api/v1/jobresume/9", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
