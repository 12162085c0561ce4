package grading

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/pkg/judge"
)

// Award statuses attached to each breakdown entry.
const (
	StatusMatch   = "match"
	StatusPartial = "partial"
	StatusMissed  = "missed"
)

// Reasons describing how a result was produced.
const (
	ReasonGraded      = "graded"
	ReasonEmptyAnswer = "empty_answer"
	ReasonJudgeError  = "ai_error"
)

// RubricPoint is one scored criterion with its maximum point value. Identity
// is the positional index within the rubric.
type RubricPoint struct {
	Text     string
	MaxScore float64
}

// Request carries one evaluation through the engine.
type Request struct {
	TaskID     string
	Question   string
	Rubric     []RubricPoint
	Answer     string
	Subject    string
	Strictness float64
	Tone       float64
	Audience   float64
	FocusAreas []string
}

// BreakdownEntry is the audit record for a single rubric point. The engine
// emits exactly one entry per rubric point, in rubric order, even when the
// judge under-delivers.
type BreakdownEntry struct {
	RubricPoint   string  `json:"rubric_point"`
	EvidenceFound string  `json:"evidence_found"`
	Coefficient   float64 `json:"coefficient"`
	Status        string  `json:"status"`
	Comment       string  `json:"comment"`
	ReasoningLog  string  `json:"reasoning_log"`
	MaxScore      float64 `json:"max_score"`
	AwardedScore  float64 `json:"awarded_score"`
}

// StudyPlan is the remediation suggestion carried through from the judge.
type StudyPlan struct {
	IdentifiedGap    string `json:"identified_gap"`
	RecommendedFocus string `json:"recommended_focus"`
	ActionItem       string `json:"action_item"`
}

// Result is the calibrated outcome of one evaluation.
type Result struct {
	TaskID       string           `json:"task_id"`
	Score        float64          `json:"score"`
	AwardedScore float64          `json:"awarded_score"`
	MaxScore     float64          `json:"max_score"`
	Reason       string           `json:"reason"`
	Feedback     string           `json:"feedback"`
	Breakdown    []BreakdownEntry `json:"breakdown"`
	StudyPlan    StudyPlan        `json:"study_plan"`
}

// Engine converts a judge's raw verdict into a deterministic score.
type Engine struct {
	judge  judge.Client
	logger zerolog.Logger
}

// NewEngine builds a scoring engine. A nil judge client is allowed; every
// evaluation then degrades to a zero-score result explaining the outage.
func NewEngine(judgeClient judge.Client, logger zerolog.Logger) *Engine {
	return &Engine{
		judge:  judgeClient,
		logger: logger.With().Str("component", "grading_engine").Logger(),
	}
}

// Evaluate grades the request's answer against its rubric. Judge failures are
// absorbed into the result; the returned Result is always usable.
func (e *Engine) Evaluate(ctx context.Context, request Request) Result {
	totalMax := 0.0
	for _, point := range request.Rubric {
		totalMax += point.MaxScore
	}

	result := Result{
		TaskID:    request.TaskID,
		MaxScore:  totalMax,
		Breakdown: []BreakdownEntry{},
	}

	if Normalize(request.Answer) == "" {
		result.Reason = ReasonEmptyAnswer
		result.Feedback = "No content provided."
		return result
	}

	judgment, err := e.requestJudgment(ctx, request)
	if err != nil {
		e.logger.Warn().Err(err).Str("task_id", request.TaskID).Msg("judgment unavailable")
		result.Reason = ReasonJudgeError
		result.Feedback = err.Error()
		return result
	}

	awarded := 0.0
	breakdown := make([]BreakdownEntry, 0, len(request.Rubric))
	for idx, point := range request.Rubric {
		item := judge.Item{}
		if idx < len(judgment.Breakdown) {
			item = judgment.Breakdown[idx]
		}

		coefficient := quantize(coerceCoefficient(item.ScoreCoefficient))
		entryAward := award(point.MaxScore, coefficient)
		awarded += entryAward

		breakdown = append(breakdown, BreakdownEntry{
			RubricPoint:   point.Text,
			EvidenceFound: item.EvidenceFound,
			Coefficient:   coefficient,
			Status:        statusFor(coefficient),
			Comment:       item.Comment,
			ReasoningLog:  item.ReasoningLog,
			MaxScore:      point.MaxScore,
			AwardedScore:  entryAward,
		})
	}

	result.Reason = ReasonGraded
	result.AwardedScore = awarded
	result.Breakdown = breakdown
	result.StudyPlan = StudyPlan(judgment.StudyPlan)
	result.Feedback = judgment.OverallFeedback
	if result.Feedback == "" {
		result.Feedback = "Grading complete."
	}
	if totalMax > 0 {
		result.Score = awarded / totalMax
	}

	return result
}

func (e *Engine) requestJudgment(ctx context.Context, request Request) (*judge.Judgment, error) {
	if e.judge == nil {
		return nil, errJudgeNotConfigured
	}

	points := make([]string, 0, len(request.Rubric))
	for _, point := range request.Rubric {
		points = append(points, point.Text)
	}

	return e.judge.Grade(ctx, judge.Request{
		Question:     request.Question,
		RubricPoints: points,
		Answer:       request.Answer,
		Subject:      request.Subject,
		Strictness:   request.Strictness,
		Tone:         request.Tone,
		Audience:     request.Audience,
		FocusAreas:   request.FocusAreas,
	})
}

// quantize maps a raw judge coefficient onto one of three discrete tiers,
// damping small variance in the judge's confidence estimate. Both boundaries
// are inclusive of the upper tier.
func quantize(raw float64) float64 {
	switch {
	case raw >= 0.75:
		return 1.0
	case raw >= 0.25:
		return 0.5
	default:
		return 0.0
	}
}

// award converts a tier into points. Half-tier awards are rounded to the
// nearest multiple of 0.5 so amounts stay human readable; math.Round rounds
// halves away from zero, so a 0.5 weight awards 0.5 rather than 0.
func award(maxScore, coefficient float64) float64 {
	switch coefficient {
	case 1.0:
		return maxScore
	case 0.5:
		return math.Round(maxScore*0.5*2) / 2
	default:
		return 0.0
	}
}

func statusFor(coefficient float64) string {
	switch coefficient {
	case 1.0:
		return StatusMatch
	case 0.5:
		return StatusPartial
	default:
		return StatusMissed
	}
}

// coerceCoefficient extracts a float from the judge's loosely typed
// score_coefficient field. Anything unparsable is 0.0, never an error.
func coerceCoefficient(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0.0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0.0
		}
		return parsed
	default:
		return 0.0
	}
}
