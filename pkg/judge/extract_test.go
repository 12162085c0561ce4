package judge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlainObject(t *testing.T) {
	payload := `{"breakdown": []}`
	require.Equal(t, payload, extractJSON(payload))
}

func TestExtractJSONFencedBlock(t *testing.T) {
	payload := "Here is the grade:\n```json\n{\"overall_feedback\": \"ok\"}\n```\nThanks!"
	require.Equal(t, `{"overall_feedback": "ok"}`, extractJSON(payload))
}

func TestExtractJSONSurroundingProse(t *testing.T) {
	payload := `Sure! The result is {"overall_feedback": "good"} as requested.`
	require.Equal(t, `{"overall_feedback": "good"}`, extractJSON(payload))
}

func TestExtractJSONNoObject(t *testing.T) {
	require.Equal(t, "no json here", extractJSON("  no json here  "))
}

func TestParseJudgmentToleratesStringCoefficients(t *testing.T) {
	content := "```json\n" + `{
  "breakdown": [
    {"rubric_point": "a", "score_coefficient": "0.9", "status": "match"},
    {"rubric_point": "b", "score_coefficient": 0.4}
  ],
  "overall_feedback": "solid",
  "study_plan": {"identified_gap": "none", "recommended_focus": "", "action_item": ""}
}` + "\n```"

	judgment, err := parseJudgment(content)
	require.NoError(t, err)
	require.Len(t, judgment.Breakdown, 2)
	require.Equal(t, "0.9", judgment.Breakdown[0].ScoreCoefficient)
	require.Equal(t, 0.4, judgment.Breakdown[1].ScoreCoefficient)
	require.Equal(t, "solid", judgment.OverallFeedback)
	require.Equal(t, "none", judgment.StudyPlan.IdentifiedGap)
}

func TestParseJudgmentRejectsGarbage(t *testing.T) {
	_, err := parseJudgment("I could not grade this answer, sorry.")
	require.Error(t, err)
}
