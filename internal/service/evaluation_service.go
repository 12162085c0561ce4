package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
	"github.com/dialectic-ai/dialectic-api/internal/grading"
	"github.com/dialectic-ai/dialectic-api/internal/models"
	"github.com/dialectic-ai/dialectic-api/internal/observability"
	"github.com/dialectic-ai/dialectic-api/internal/repository"
)

// Grader turns a grading request into a calibrated result.
type Grader interface {
	Evaluate(ctx context.Context, request grading.Request) grading.Result
}

// EvaluationService exposes the evaluation workflow and its history.
type EvaluationService interface {
	Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error)
	ListByTask(ctx context.Context, taskID string) ([]models.EvaluationRecord, error)
	List(ctx context.Context, limit, offset int) (dto.EvaluationHistoryResult, error)
}

type evaluationService struct {
	engine    Grader
	repo      repository.EvaluationRepository
	validator *validator.Validate
	cache     *redis.Client
	ttl       time.Duration
	policy    *bluemonday.Policy
	model     string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEvaluationService constructs the evaluation service. repo and cache may
// be nil; persistence and caching then become no-ops.
func NewEvaluationService(
	engine Grader,
	repo repository.EvaluationRepository,
	validate *validator.Validate,
	cache *redis.Client,
	ttl time.Duration,
	model string,
	logger zerolog.Logger,
) EvaluationService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &evaluationService{
		engine:    engine,
		repo:      repo,
		validator: validate,
		cache:     cache,
		ttl:       ttl,
		policy:    bluemonday.StrictPolicy(),
		model:     model,
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
		now:       time.Now,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	tracer := otel.Tracer("github.com/dialectic-ai/dialectic-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.grade")
	span.SetAttributes(
		attribute.String("evaluation.task_id", payload.TaskID),
		attribute.Int("evaluation.rubric_points", len(payload.ReferenceAnswers)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EvaluationResponse{}, err
	}

	cacheKey := ""
	if s.cache != nil {
		cacheKey = resultCacheKey(payload)
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.EvaluationResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				// The fingerprint ignores task identity, so restore it.
				response.TaskID = payload.TaskID
				response.Cached = true
				observability.EvaluationCache().WithLabelValues("hit").Inc()
				span.SetAttributes(attribute.Bool("evaluation.cache_hit", true))
				return response, nil
			}
		}
		observability.EvaluationCache().WithLabelValues("miss").Inc()
	}

	result := s.engine.Evaluate(ctx, payload.ToGradingRequest())
	s.sanitizeResult(&result)
	observability.EvaluationOutcomes().WithLabelValues(result.Reason).Inc()
	span.SetAttributes(
		attribute.Float64("evaluation.score", result.Score),
		attribute.String("evaluation.reason", result.Reason),
	)

	response := dto.NewEvaluationResponse(result)

	if cacheKey != "" && result.Reason == grading.ReasonGraded {
		// Degraded outcomes stay uncached so a recovered judge can regrade.
		if raw, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache evaluation result")
			}
		}
	}

	s.persist(ctx, result)

	s.logger.Info().
		Str("task_id", result.TaskID).
		Str("reason", result.Reason).
		Float64("score", result.Score).
		Msg("evaluation completed")

	return response, nil
}

func (s *evaluationService) ListByTask(ctx context.Context, taskID string) ([]models.EvaluationRecord, error) {
	if s.repo == nil {
		return []models.EvaluationRecord{}, nil
	}
	records, err := s.repo.ListByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.EvaluationRecord{}
	}
	return records, nil
}

func (s *evaluationService) List(ctx context.Context, limit, offset int) (dto.EvaluationHistoryResult, error) {
	if s.repo == nil {
		return dto.EvaluationHistoryResult{Items: []models.EvaluationRecord{}}, nil
	}
	records, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return dto.EvaluationHistoryResult{}, err
	}
	if records == nil {
		records = []models.EvaluationRecord{}
	}
	return dto.EvaluationHistoryResult{
		Items:      records,
		TotalItems: total,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// sanitizeResult strips markup from every judge-authored string. The rubric
// text is caller-supplied and passes through untouched.
func (s *evaluationService) sanitizeResult(result *grading.Result) {
	result.Feedback = s.policy.Sanitize(result.Feedback)
	for i := range result.Breakdown {
		result.Breakdown[i].EvidenceFound = s.policy.Sanitize(result.Breakdown[i].EvidenceFound)
		result.Breakdown[i].Comment = s.policy.Sanitize(result.Breakdown[i].Comment)
		result.Breakdown[i].ReasoningLog = s.policy.Sanitize(result.Breakdown[i].ReasoningLog)
	}
	result.StudyPlan.IdentifiedGap = s.policy.Sanitize(result.StudyPlan.IdentifiedGap)
	result.StudyPlan.RecommendedFocus = s.policy.Sanitize(result.StudyPlan.RecommendedFocus)
	result.StudyPlan.ActionItem = s.policy.Sanitize(result.StudyPlan.ActionItem)
}

func (s *evaluationService) persist(ctx context.Context, result grading.Result) {
	if s.repo == nil {
		return
	}

	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		s.logger.Warn().Err(err).Str("task_id", result.TaskID).Msg("failed to encode breakdown for persistence")
		breakdown = []byte("[]")
	}

	record := models.EvaluationRecord{
		TaskID:       result.TaskID,
		Score:        result.Score,
		AwardedScore: result.AwardedScore,
		MaxScore:     result.MaxScore,
		Reason:       result.Reason,
		Feedback:     result.Feedback,
		Breakdown:    datatypes.JSON(breakdown),
		StudyPlan: datatypes.JSONMap{
			"identified_gap":    result.StudyPlan.IdentifiedGap,
			"recommended_focus": result.StudyPlan.RecommendedFocus,
			"action_item":       result.StudyPlan.ActionItem,
		},
		Model:     s.model,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		s.logger.Warn().Err(err).Str("task_id", result.TaskID).Msg("failed to persist evaluation record")
	}
}

// resultCacheKey fingerprints the grading inputs. Task identity is excluded
// so identical content shares one cache entry across tasks.
func resultCacheKey(payload dto.EvaluationRequest) string {
	fingerprint := struct {
		Question   string                `json:"question"`
		References []dto.ReferenceAnswer `json:"references"`
		Answer     string                `json:"answer"`
		Subject    string                `json:"subject"`
		Strictness *float64              `json:"strictness"`
		Tone       *float64              `json:"tone"`
		Audience   *float64              `json:"audience"`
		FocusAreas []string              `json:"focus_areas"`
	}{
		Question:   payload.Question,
		References: payload.ReferenceAnswers,
		Answer:     payload.PurpleAnswer,
		Subject:    payload.Subject,
		Strictness: payload.Strictness,
		Tone:       payload.Tone,
		Audience:   payload.Audience,
		FocusAreas: payload.FocusAreas,
	}

	raw, err := json.Marshal(fingerprint)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "evaluation:result:v1:" + hex.EncodeToString(sum[:])
}
