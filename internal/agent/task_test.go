package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
)

func TestTaskRecordsTransitions(t *testing.T) {
	var seen []dto.TaskStatusUpdate
	task := NewTask("t-1", func(update dto.TaskStatusUpdate) {
		seen = append(seen, update)
	})

	require.Equal(t, StateReceived, task.State())

	task.Advance(StateValidating, "")
	task.Advance(StateJudging, "grading")
	task.Complete(dto.EvaluationResponse{TaskID: "t-1", Score: 1}, "done")

	require.Equal(t, StateCompleted, task.State())
	require.Len(t, seen, 4)

	snapshot := task.Snapshot()
	require.Equal(t, "t-1", snapshot.ID)
	require.Equal(t, "completed", snapshot.State)
	require.NotNil(t, snapshot.Result)
	require.Equal(t, 1.0, snapshot.Result.Score)
}

func TestTaskIgnoresTransitionsAfterTerminalState(t *testing.T) {
	task := NewTask("t-2", nil)

	task.Reject("bad request")
	require.Equal(t, StateRejected, task.State())

	task.Advance(StateJudging, "should not happen")
	task.Fail("should not happen either")
	task.Complete(dto.EvaluationResponse{}, "nor this")

	require.Equal(t, StateRejected, task.State())
	require.Nil(t, task.Snapshot().Result)
	require.Len(t, task.Snapshot().Updates, 2)
}

func TestTerminalStates(t *testing.T) {
	require.True(t, StateRejected.Terminal())
	require.True(t, StateCompleted.Terminal())
	require.True(t, StateFailed.Terminal())
	require.False(t, StateReceived.Terminal())
	require.False(t, StateValidating.Terminal())
	require.False(t, StateDelegating.Terminal())
	require.False(t, StateJudging.Terminal())
}
