package dto

import (
	"github.com/dialectic-ai/dialectic-api/internal/grading"
	"github.com/dialectic-ai/dialectic-api/internal/models"
)

// ReferenceAnswer is one rubric criterion with its maximum point value.
type ReferenceAnswer struct {
	Text     string  `json:"text" validate:"required"`
	MaxScore float64 `json:"max_score" validate:"min=0"`
}

// EvaluationRequest is the inbound payload for a direct evaluation. The
// answer is allowed to be empty; an empty answer scores zero rather than
// failing validation. Style dials are optional and default to 0.5.
type EvaluationRequest struct {
	TaskID           string            `json:"task_id" validate:"required"`
	Question         string            `json:"question" validate:"required"`
	ReferenceAnswers []ReferenceAnswer `json:"reference_answers" validate:"required,dive"`
	PurpleAnswer     string            `json:"purple_answer"`
	Subject          string            `json:"subject"`
	Strictness       *float64          `json:"strictness" validate:"omitempty,min=0,max=1"`
	Tone             *float64          `json:"tone" validate:"omitempty,min=0,max=1"`
	Audience         *float64          `json:"audience" validate:"omitempty,min=0,max=1"`
	FocusAreas       []string          `json:"focus_areas"`
}

// ToGradingRequest converts the wire payload into the engine's domain
// request, applying defaults for the optional fields.
func (r EvaluationRequest) ToGradingRequest() grading.Request {
	rubric := make([]grading.RubricPoint, 0, len(r.ReferenceAnswers))
	for _, reference := range r.ReferenceAnswers {
		rubric = append(rubric, grading.RubricPoint{Text: reference.Text, MaxScore: reference.MaxScore})
	}

	subject := r.Subject
	if subject == "" {
		subject = "General"
	}
	focusAreas := r.FocusAreas
	if len(focusAreas) == 0 {
		focusAreas = []string{"accuracy"}
	}

	return grading.Request{
		TaskID:     r.TaskID,
		Question:   r.Question,
		Rubric:     rubric,
		Answer:     r.PurpleAnswer,
		Subject:    subject,
		Strictness: dialOrDefault(r.Strictness),
		Tone:       dialOrDefault(r.Tone),
		Audience:   dialOrDefault(r.Audience),
		FocusAreas: focusAreas,
	}
}

func dialOrDefault(value *float64) float64 {
	if value == nil {
		return 0.5
	}
	return *value
}

// EvaluationMetadata groups the qualitative parts of an evaluation outcome.
type EvaluationMetadata struct {
	Feedback  string                   `json:"feedback"`
	Breakdown []grading.BreakdownEntry `json:"breakdown"`
	StudyPlan grading.StudyPlan        `json:"study_plan"`
}

// EvaluationResponse is the outbound payload for an evaluation outcome.
type EvaluationResponse struct {
	TaskID       string             `json:"task_id"`
	Score        float64            `json:"score"`
	AwardedScore float64            `json:"awarded_score"`
	MaxScore     float64            `json:"max_score"`
	Metadata     EvaluationMetadata `json:"metadata"`
	Cached       bool               `json:"cached,omitempty"`
}

// EvaluationHistoryResult pages persisted evaluation records.
type EvaluationHistoryResult struct {
	Items      []models.EvaluationRecord `json:"items"`
	TotalItems int64                     `json:"total_items"`
	Limit      int                       `json:"limit"`
	Offset     int                       `json:"offset"`
}

// NewEvaluationResponse builds the wire response from an engine result.
func NewEvaluationResponse(result grading.Result) EvaluationResponse {
	breakdown := result.Breakdown
	if breakdown == nil {
		breakdown = []grading.BreakdownEntry{}
	}

	return EvaluationResponse{
		TaskID:       result.TaskID,
		Score:        result.Score,
		AwardedScore: result.AwardedScore,
		MaxScore:     result.MaxScore,
		Metadata: EvaluationMetadata{
			Feedback:  result.Feedback,
			Breakdown: breakdown,
			StudyPlan: result.StudyPlan,
		},
	}
}
