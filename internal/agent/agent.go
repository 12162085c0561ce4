package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
)

// Role and config keys every delegation request must provide.
var (
	requiredRoles      = []string{"purple_agent"}
	requiredConfigKeys = []string{"task_id", "question", "reference_answers"}
)

// AnswerProvider fetches a free-text answer from a remote participant.
type AnswerProvider interface {
	Ask(ctx context.Context, endpoint, question string) (string, error)
}

// Evaluator grades a fully assembled evaluation request.
type Evaluator interface {
	Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error)
}

// Agent drives one delegated evaluation through its lifecycle: validate the
// request, fetch the answer from the purple agent, grade it, and report a
// terminal state on the task.
type Agent struct {
	messenger AnswerProvider
	evaluator Evaluator
	logger    zerolog.Logger
}

// New constructs the delegation agent.
func New(messenger AnswerProvider, evaluator Evaluator, logger zerolog.Logger) *Agent {
	return &Agent{
		messenger: messenger,
		evaluator: evaluator,
		logger:    logger.With().Str("component", "agent").Logger(),
	}
}

// Run executes the task until it reaches a terminal state. Judge outages are
// absorbed by the grading engine and still complete the task; only missing
// answers and unexpected execution errors fail it.
func (a *Agent) Run(ctx context.Context, input string, task *Task) {
	task.Advance(StateValidating, "")

	var request dto.DelegationRequest
	if err := json.Unmarshal([]byte(input), &request); err != nil {
		task.Reject(fmt.Sprintf("Request structural error: %v", err))
		return
	}

	if missing := missingKeys(requiredRoles, roleSet(request.Participants)); len(missing) > 0 {
		task.Reject(fmt.Sprintf("Missing roles: %s", strings.Join(missing, ", ")))
		return
	}
	if missing := missingKeys(requiredConfigKeys, configSet(request.Config)); len(missing) > 0 {
		task.Reject(fmt.Sprintf("Missing config keys: %s", strings.Join(missing, ", ")))
		return
	}

	question, _ := request.Config["question"].(string)

	task.Advance(StateDelegating, "Calling Purple Agent for answer...")

	answer, err := a.messenger.Ask(ctx, request.Participants["purple_agent"], question)
	if err != nil {
		task.Fail(fmt.Sprintf("Execution error: %v", err))
		return
	}
	if answer == "" {
		task.Fail("Execution error: Purple Agent returned an empty answer.")
		return
	}

	payload, err := buildEvaluationRequest(request.Config, answer)
	if err != nil {
		task.Fail(fmt.Sprintf("Execution error: %v", err))
		return
	}

	task.Advance(StateJudging, "Evaluating answer against rubric...")

	result, err := a.evaluator.Evaluate(ctx, payload)
	if err != nil {
		task.Fail(fmt.Sprintf("Execution error: %v", err))
		return
	}

	a.logger.Info().
		Str("task_id", result.TaskID).
		Float64("score", result.Score).
		Msg("delegated evaluation completed")
	task.Complete(result, fmt.Sprintf("Final Score: %g", result.Score))
}

// buildEvaluationRequest converts the loosely typed config bag into the
// strict evaluation payload, injecting the fetched answer.
func buildEvaluationRequest(config map[string]interface{}, answer string) (dto.EvaluationRequest, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return dto.EvaluationRequest{}, fmt.Errorf("encode task config: %w", err)
	}

	var payload dto.EvaluationRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return dto.EvaluationRequest{}, fmt.Errorf("decode task config: %w", err)
	}

	payload.PurpleAnswer = answer
	return payload, nil
}

func roleSet(participants map[string]string) map[string]struct{} {
	set := make(map[string]struct{}, len(participants))
	for role := range participants {
		set[role] = struct{}{}
	}
	return set
}

func configSet(config map[string]interface{}) map[string]struct{} {
	set := make(map[string]struct{}, len(config))
	for key := range config {
		set[key] = struct{}{}
	}
	return set
}

// missingKeys computes required − provided, sorted for stable diagnostics.
func missingKeys(required []string, provided map[string]struct{}) []string {
	var missing []string
	for _, key := range required {
		if _, ok := provided[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
