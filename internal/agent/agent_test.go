package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
)

type stubProvider struct {
	answer   string
	err      error
	asked    int
	question string
	endpoint string
}

func (s *stubProvider) Ask(ctx context.Context, endpoint, question string) (string, error) {
	s.asked++
	s.endpoint = endpoint
	s.question = question
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type stubEvaluator struct {
	response dto.EvaluationResponse
	err      error
	payloads []dto.EvaluationRequest
}

func (s *stubEvaluator) Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return dto.EvaluationResponse{}, s.err
	}
	return s.response, nil
}

func delegationInput(t *testing.T, request dto.DelegationRequest) string {
	t.Helper()
	raw, err := json.Marshal(request)
	require.NoError(t, err)
	return string(raw)
}

func validDelegation() dto.DelegationRequest {
	return dto.DelegationRequest{
		Participants: map[string]string{"purple_agent": "http://purple.local/answer"},
		Config: map[string]interface{}{
			"task_id":  "task-9",
			"question": "Explain photosynthesis.",
			"reference_answers": []map[string]interface{}{
				{"text": "Photosynthesis", "max_score": 2.0},
			},
		},
	}
}

func TestRunRejectsMalformedPayload(t *testing.T) {
	provider := &stubProvider{}
	agent := New(provider, &stubEvaluator{}, zerolog.Nop())
	task := NewTask("t-1", nil)

	agent.Run(context.Background(), "this is not json", task)

	require.Equal(t, StateRejected, task.State())
	require.Equal(t, 0, provider.asked)
	snapshot := task.Snapshot()
	require.Contains(t, snapshot.Updates[len(snapshot.Updates)-1].Message, "Request structural error")
}

func TestRunRejectsMissingRole(t *testing.T) {
	request := validDelegation()
	request.Participants = map[string]string{"observer": "http://elsewhere"}

	agent := New(&stubProvider{}, &stubEvaluator{}, zerolog.Nop())
	task := NewTask("t-2", nil)

	agent.Run(context.Background(), delegationInput(t, request), task)

	require.Equal(t, StateRejected, task.State())
	snapshot := task.Snapshot()
	require.Contains(t, snapshot.Updates[len(snapshot.Updates)-1].Message, "Missing roles: purple_agent")
}

func TestRunRejectsMissingConfigKeys(t *testing.T) {
	request := validDelegation()
	delete(request.Config, "question")
	delete(request.Config, "reference_answers")

	agent := New(&stubProvider{}, &stubEvaluator{}, zerolog.Nop())
	task := NewTask("t-3", nil)

	agent.Run(context.Background(), delegationInput(t, request), task)

	require.Equal(t, StateRejected, task.State())
	snapshot := task.Snapshot()
	message := snapshot.Updates[len(snapshot.Updates)-1].Message
	require.Contains(t, message, "question")
	require.Contains(t, message, "reference_answers")
}

func TestRunFailsOnEmptyProviderAnswer(t *testing.T) {
	// The messenger trims replies, so a blank body arrives here empty.
	provider := &stubProvider{answer: ""}
	agent := New(provider, &stubEvaluator{}, zerolog.Nop())
	task := NewTask("t-4", nil)

	agent.Run(context.Background(), delegationInput(t, validDelegation()), task)

	require.Equal(t, StateFailed, task.State())
	snapshot := task.Snapshot()
	require.Contains(t, snapshot.Updates[len(snapshot.Updates)-1].Message, "empty answer")
}

func TestRunFailsOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	agent := New(provider, &stubEvaluator{}, zerolog.Nop())
	task := NewTask("t-5", nil)

	agent.Run(context.Background(), delegationInput(t, validDelegation()), task)

	require.Equal(t, StateFailed, task.State())
	snapshot := task.Snapshot()
	require.Contains(t, snapshot.Updates[len(snapshot.Updates)-1].Message, "connection refused")
}

func TestRunCompletesAndReportsResult(t *testing.T) {
	provider := &stubProvider{answer: "Plants turn light into food."}
	evaluator := &stubEvaluator{response: dto.EvaluationResponse{TaskID: "task-9", Score: 0.75, AwardedScore: 3, MaxScore: 4}}
	agent := New(provider, evaluator, zerolog.Nop())
	task := NewTask("t-6", nil)

	agent.Run(context.Background(), delegationInput(t, validDelegation()), task)

	require.Equal(t, StateCompleted, task.State())
	require.Equal(t, 1, provider.asked)
	require.Equal(t, "http://purple.local/answer", provider.endpoint)
	require.Equal(t, "Explain photosynthesis.", provider.question)

	require.Len(t, evaluator.payloads, 1)
	payload := evaluator.payloads[0]
	require.Equal(t, "task-9", payload.TaskID)
	require.Equal(t, "Plants turn light into food.", payload.PurpleAnswer)
	require.Len(t, payload.ReferenceAnswers, 1)

	snapshot := task.Snapshot()
	require.NotNil(t, snapshot.Result)
	require.Equal(t, 0.75, snapshot.Result.Score)

	// The two working notifications surround the terminal update.
	states := make([]string, 0, len(snapshot.Updates))
	for _, update := range snapshot.Updates {
		states = append(states, update.State)
	}
	require.Equal(t, []string{"received", "validating", "delegating", "judging", "completed"}, states)
}

func TestRunCompletesEvenWhenScoreIsZero(t *testing.T) {
	// A degraded judge yields a zero-score result, not a task failure.
	provider := &stubProvider{answer: "an answer"}
	evaluator := &stubEvaluator{response: dto.EvaluationResponse{
		TaskID:   "task-9",
		Score:    0,
		Metadata: dto.EvaluationMetadata{Feedback: "Model Inference Error: timeout"},
	}}
	agent := New(provider, evaluator, zerolog.Nop())
	task := NewTask("t-7", nil)

	agent.Run(context.Background(), delegationInput(t, validDelegation()), task)

	require.Equal(t, StateCompleted, task.State())
	require.NotNil(t, task.Snapshot().Result)
}

func TestRunFailsOnEvaluatorError(t *testing.T) {
	provider := &stubProvider{answer: "an answer"}
	evaluator := &stubEvaluator{err: errors.New("unexpected internal error")}
	agent := New(provider, evaluator, zerolog.Nop())
	task := NewTask("t-8", nil)

	agent.Run(context.Background(), delegationInput(t, validDelegation()), task)

	require.Equal(t, StateFailed, task.State())
}
