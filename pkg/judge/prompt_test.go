package judge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialDescriptionBuckets(t *testing.T) {
	cases := []struct {
		value    float64
		expected string
	}{
		{0.0, "Extreme focus on low."},
		{0.19, "Extreme focus on low."},
		{0.2, "Prefer low."},
		{0.39, "Prefer low."},
		{0.5, "Balanced between low and high."},
		{0.6, "Prefer high."},
		{0.79, "Prefer high."},
		{0.8, "Extreme focus on high."},
		{1.0, "Extreme focus on high."},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, dialDescription(tc.value, "low", "high"), "value %v", tc.value)
	}
}

func TestBuildUserPromptIncludesRubricAndAnswer(t *testing.T) {
	prompt := buildUserPrompt(Request{
		Question:     "What is photosynthesis?",
		RubricPoints: []string{"Mentions chlorophyll", "Mentions sunlight"},
		Answer:       "Plants turn light into food.",
		Subject:      "Biology",
		Strictness:   0.1,
		Tone:         0.9,
		Audience:     0.5,
		FocusAreas:   []string{"accuracy", "depth"},
	})

	require.Contains(t, prompt, "Question: What is photosynthesis?")
	require.Contains(t, prompt, "- Criteria: Mentions chlorophyll")
	require.Contains(t, prompt, "- Criteria: Mentions sunlight")
	require.Contains(t, prompt, `Student Answer: "Plants turn light into food."`)
	require.Contains(t, prompt, "Subject Domain: Biology")
	require.Contains(t, prompt, "Core Evaluation Focus: accuracy, depth.")
	require.Contains(t, prompt, "Extreme focus on semantic essence and core concept.")
	require.Contains(t, prompt, "score_coefficient")
}

func TestBuildUserPromptDefaultsSubject(t *testing.T) {
	prompt := buildUserPrompt(Request{Question: "q", Answer: "a"})
	require.Contains(t, prompt, "Subject Domain: General")
	require.False(t, strings.Contains(prompt, "Core Evaluation Focus"))
}
