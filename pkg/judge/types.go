package judge

import "context"

// Request carries everything the judge needs to grade one answer.
type Request struct {
	Question     string
	RubricPoints []string
	Answer       string
	Subject      string
	Strictness   float64
	Tone         float64
	Audience     float64
	FocusAreas   []string
}

// Item is one judged rubric point as returned by the model. The payload is
// untrusted: ScoreCoefficient is kept loosely typed because models routinely
// return numbers as strings or omit the field entirely.
type Item struct {
	RubricPoint      string      `json:"rubric_point"`
	EvidenceFound    string      `json:"evidence_found"`
	ScoreCoefficient interface{} `json:"score_coefficient"`
	Status           string      `json:"status"`
	ReasoningLog     string      `json:"reasoning_log"`
	Comment          string      `json:"comment"`
}

// StudyPlan is the remediation suggestion produced alongside the grade.
type StudyPlan struct {
	IdentifiedGap    string `json:"identified_gap"`
	RecommendedFocus string `json:"recommended_focus"`
	ActionItem       string `json:"action_item"`
}

// Judgment is the structured verdict for a whole rubric.
type Judgment struct {
	Breakdown       []Item    `json:"breakdown"`
	OverallFeedback string    `json:"overall_feedback"`
	StudyPlan       StudyPlan `json:"study_plan"`
}

// Client describes a judgment service capable of grading an answer.
// Implementations make exactly one attempt per call and surface every
// transport or parsing problem as the returned error.
type Client interface {
	Grade(ctx context.Context, request Request) (*Judgment, error)
}
