package handler

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/service"
	"github.com/noah-isme/mock-interview-api/internal/utils"
)

// ResumeHandler exposes the resume library endpoints.
type ResumeHandler struct {
	service service.ResumeService
	logger  zerolog.Logger
}

// NewResumeHandler constructs a resume handler.
func NewResumeHandler(service service.ResumeService, logger zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		service: service,
		logger:  logger.With().Str("component", "resume_handler").Logger(),
	}
}

// Register wires resume routes.
func (h *ResumeHandler) Register(router fiber.Router) {
	router.Post("", h.upload)
	router.Get("", h.list)
	router.Delete("/:id", h.delete)
}

func (h *ResumeHandler) upload(c *fiber.Ctx) error {
	payload := dto.ResumeCreateRequest{
		JobRole:        c.FormValue("jobRole"),
		JobDescription: c.FormValue("jobDescription"),
	}

	// A missing part is reported by the service as a validation failure.
	var file *multipart.FileHeader
	if header, err := c.FormFile("resume"); err == nil {
		file = header
	}

	resume, err := h.service.Upload(c.UserContext(), userIDFromContext(c), payload, file)
	if err != nil {
		return respondError(c, h.logger, err, "failed to upload resume")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resume uploaded", resume)
}

func (h *ResumeHandler) list(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to list resumes")
	}

	return utils.SendSuccess(c, "resumes retrieved", fiber.Map{"resumes": items})
}

func (h *ResumeHandler) delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid resume id")
	}

	if err := h.service.Delete(c.UserContext(), userIDFromContext(c), uint(id)); err != nil {
		return respondError(c, h.logger, err, "failed to delete resume")
	}

	return utils.SendSuccess(c, "resume deleted", nil)
}
