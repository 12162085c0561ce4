package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/internal/agent"
	"github.com/dialectic-ai/dialectic-api/internal/dto"
	"github.com/dialectic-ai/dialectic-api/internal/events"
	"github.com/dialectic-ai/dialectic-api/internal/utils"
)

// AgentHandler accepts delegated evaluation tasks and serves the agent card.
type AgentHandler struct {
	agent  *agent.Agent
	events *events.Publisher
	card   dto.AgentCard
	logger zerolog.Logger
}

// NewAgentHandler constructs the agent handler. publisher may be nil.
func NewAgentHandler(runner *agent.Agent, publisher *events.Publisher, card dto.AgentCard, logger zerolog.Logger) *AgentHandler {
	return &AgentHandler{
		agent:  runner,
		events: publisher,
		card:   card,
		logger: logger.With().Str("component", "agent_handler").Logger(),
	}
}

// Register wires the task submission route.
func (h *AgentHandler) Register(router fiber.Router) {
	router.Post("/tasks/send", h.send)
}

// RegisterWellKnown wires the agent card discovery route on the app root.
func (h *AgentHandler) RegisterWellKnown(app *fiber.App) {
	app.Get("/.well-known/agent.json", h.agentCard)
}

func (h *AgentHandler) agentCard(c *fiber.Ctx) error {
	return c.JSON(h.card)
}

func (h *AgentHandler) send(c *fiber.Ctx) error {
	var payload dto.TaskSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	taskID := strings.TrimSpace(payload.ID)
	if taskID == "" {
		taskID = uuid.NewString()
	}

	task := agent.NewTask(taskID, func(update dto.TaskStatusUpdate) {
		h.events.Publish(events.TaskEvent{
			TaskID:  taskID,
			State:   update.State,
			Message: update.Message,
			SentAt:  update.Timestamp,
		})
	})

	h.agent.Run(c.UserContext(), payload.Message.Text(), task)

	snapshot := task.Snapshot()
	requestLogger(h.logger, c).Info().
		Str("task_id", taskID).
		Str("state", snapshot.State).
		Msg("delegated task finished")

	return utils.SendSuccess(c, "task processed", snapshot)
}
