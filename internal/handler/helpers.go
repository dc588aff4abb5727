package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/middleware"
	"github.com/noah-isme/mock-interview-api/internal/service"
	"github.com/noah-isme/mock-interview-api/internal/utils"
)

var errInvalidIndex = errors.New("question index must be an integer")

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals(middleware.UserIDLocal); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func parseIndex(c *fiber.Ctx) (int, error) {
	raw := strings.TrimSpace(c.Params("index"))
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errInvalidIndex
	}
	return index, nil
}

func bodyError(err error) string {
	if errors.Is(err, dto.ErrQuestionsFormat) {
		return dto.ErrQuestionsFormat.Error()
	}
	return "invalid payload"
}

func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		namespace := fieldErr.Namespace()
		if idx := strings.Index(namespace, "."); idx >= 0 {
			namespace = namespace[idx+1:]
		}
		details[namespace] = fieldErr.Tag()
	}
	return details
}

// respondError maps service failures onto the HTTP status taxonomy. Unknown errors are logged and masked.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	if details := validationDetails(err); details != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEvaluatorUnavailable), errors.Is(err, service.ErrGeneratorUnavailable):
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, unwrapSafe(err))
	default:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

func unwrapSafe(err error) string {
	if errors.Is(err, service.ErrEvaluatorUnavailable) {
		return service.ErrEvaluatorUnavailable.Error()
	}
	return service.ErrGeneratorUnavailable.Error()
}
