package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
	"github.com/dialectic-ai/dialectic-api/internal/service"
	"github.com/dialectic-ai/dialectic-api/internal/utils"
)

// EvaluateHandler grades answers submitted directly, without delegation.
type EvaluateHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluateHandler constructs an evaluate handler.
func NewEvaluateHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluateHandler {
	return &EvaluateHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluate_handler").Logger(),
	}
}

// Register wires the direct evaluation route.
func (h *EvaluateHandler) Register(router fiber.Router) {
	router.Post("/evaluate", h.evaluate)
}

func (h *EvaluateHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Evaluate(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid evaluation request: "+err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to evaluate answer")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to evaluate answer")
	}

	return utils.SendSuccess(c, "evaluation completed", response)
}
