package agent

import (
	"time"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
)

// State is a task lifecycle phase. rejected, completed, and failed are
// terminal; a task never leaves a terminal state.
type State string

const (
	StateReceived   State = "received"
	StateValidating State = "validating"
	StateRejected   State = "rejected"
	StateDelegating State = "delegating"
	StateJudging    State = "judging"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state ends the task lifecycle.
func (s State) Terminal() bool {
	return s == StateRejected || s == StateCompleted || s == StateFailed
}

// Task is the ephemeral execution context for a single delegated evaluation.
// It records every lifecycle transition and the final artifact, and lives
// only for the duration of one request.
type Task struct {
	ID       string
	state    State
	updates  []dto.TaskStatusUpdate
	result   *dto.EvaluationResponse
	onUpdate func(dto.TaskStatusUpdate)
	now      func() time.Time
}

// NewTask creates a task in the received state. onUpdate, when non-nil, is
// invoked for every recorded transition (used for event publishing).
func NewTask(id string, onUpdate func(dto.TaskStatusUpdate)) *Task {
	task := &Task{
		ID:       id,
		state:    StateReceived,
		onUpdate: onUpdate,
		now:      time.Now,
	}
	task.record(StateReceived, "")
	return task
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	return t.state
}

// Advance moves the task into a non-terminal working state with an optional
// status note. Transitions after a terminal state are ignored.
func (t *Task) Advance(state State, message string) {
	if t.state.Terminal() {
		return
	}
	t.record(state, message)
}

// Reject terminates the task because the inbound request itself was invalid.
func (t *Task) Reject(message string) {
	if t.state.Terminal() {
		return
	}
	t.record(StateRejected, message)
}

// Fail terminates the task because execution went wrong after validation.
func (t *Task) Fail(message string) {
	if t.state.Terminal() {
		return
	}
	t.record(StateFailed, message)
}

// Complete terminates the task successfully, attaching the evaluation result.
func (t *Task) Complete(result dto.EvaluationResponse, message string) {
	if t.state.Terminal() {
		return
	}
	t.result = &result
	t.record(StateCompleted, message)
}

// Snapshot renders the task for the wire.
func (t *Task) Snapshot() dto.TaskResponse {
	updates := make([]dto.TaskStatusUpdate, len(t.updates))
	copy(updates, t.updates)

	return dto.TaskResponse{
		ID:      t.ID,
		State:   string(t.state),
		Updates: updates,
		Result:  t.result,
	}
}

func (t *Task) record(state State, message string) {
	t.state = state
	update := dto.TaskStatusUpdate{
		State:     string(state),
		Message:   message,
		Timestamp: t.now().UTC(),
	}
	t.updates = append(t.updates, update)
	if t.onUpdate != nil {
		t.onUpdate(update)
	}
}
