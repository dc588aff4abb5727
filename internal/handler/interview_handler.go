package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/service"
	"github.com/noah-isme/mock-interview-api/internal/utils"
)

// InterviewHandler exposes the interview lifecycle endpoints.
type InterviewHandler struct {
	service service.InterviewService
	logger  zerolog.Logger
}

// NewInterviewHandler constructs an interview handler.
func NewInterviewHandler(service service.InterviewService, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register wires interview routes. aiLimit is applied to the routes that call the AI provider.
func (h *InterviewHandler) Register(router fiber.Router, aiLimit fiber.Handler) {
	if aiLimit == nil {
		aiLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Post("/interview", h.create)
	router.Get("/interview/:id/questions", h.questions)
	router.Patch("/interview/:id/question/:index", h.submitAnswer)
	router.Post("/interview/:id/question/:index/evaluate", aiLimit, h.evaluateAnswer)
	router.Get("/interview/:id/results", h.results)
	router.Post("/interview/:id/complete", h.complete)
	router.Get("/user-interviews", h.history)
	router.Post("/generate-questions", aiLimit, h.generateQuestions)
}

func (h *InterviewHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateInterviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, bodyError(err))
	}

	created, err := h.service.Create(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to create interview")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interview created", created)
}

func (h *InterviewHandler) questions(c *fiber.Ctx) error {
	questions, err := h.service.GetQuestions(c.UserContext(), c.Params("id"), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load interview questions")
	}

	return utils.SendSuccess(c, "interview questions retrieved", questions)
}

func (h *InterviewHandler) submitAnswer(c *fiber.Ctx) error {
	index, err := parseIndex(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.SubmitAnswer(c.UserContext(), c.Params("id"), index, userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to submit answer")
	}

	return utils.SendSuccess(c, "answer recorded", fiber.Map{"question": entry})
}

func (h *InterviewHandler) evaluateAnswer(c *fiber.Ctx) error {
	index, err := parseIndex(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EvaluateAnswerRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	entry, err := h.service.EvaluateAndSubmit(c.UserContext(), c.Params("id"), index, userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to evaluate answer")
	}

	return utils.SendSuccess(c, "answer evaluated", fiber.Map{"question": entry})
}

func (h *InterviewHandler) results(c *fiber.Ctx) error {
	results, err := h.service.GetResults(c.UserContext(), c.Params("id"), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load interview results")
	}

	return utils.SendSuccess(c, "interview results retrieved", results)
}

func (h *InterviewHandler) complete(c *fiber.Ctx) error {
	var payload dto.CompleteInterviewRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	completed, err := h.service.Complete(c.UserContext(), c.Params("id"), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to complete interview")
	}

	return utils.SendSuccess(c, "interview completed", completed)
}

func (h *InterviewHandler) history(c *fiber.Ctx) error {
	history, err := h.service.ListByUser(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to load interview history")
	}

	return utils.SendSuccess(c, "interview history retrieved", history)
}

func (h *InterviewHandler) generateQuestions(c *fiber.Ctx) error {
	var payload dto.GenerateQuestionsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	generated, err := h.service.GenerateQuestions(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "failed to generate questions")
	}

	return utils.SendSuccess(c, "questions generated", generated)
}
