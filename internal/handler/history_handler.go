package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/internal/service"
	"github.com/dialectic-ai/dialectic-api/internal/utils"
)

// HistoryHandler serves the persisted evaluation audit trail.
type HistoryHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewHistoryHandler constructs a history handler.
func NewHistoryHandler(service service.EvaluationService, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger.With().Str("component", "history_handler").Logger(),
	}
}

// Register wires the evaluation history routes.
func (h *HistoryHandler) Register(router fiber.Router) {
	router.Get("/evaluations", h.list)
	router.Get("/evaluations/:task_id", h.listByTask)
}

func (h *HistoryHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	result, err := h.service.List(c.UserContext(), limit, offset)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list evaluations")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list evaluations")
	}

	return utils.SendSuccess(c, "evaluations retrieved", result)
}

func (h *HistoryHandler) listByTask(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("task_id"))
	if taskID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "task id is required")
	}

	records, err := h.service.ListByTask(c.UserContext(), taskID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("task_id", taskID).Msg("failed to load evaluation history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load evaluation history")
	}

	return utils.SendSuccess(c, "evaluation history retrieved", records)
}
