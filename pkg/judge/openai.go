package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	judgeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dialectic",
		Subsystem: "judge",
		Name:      "request_duration_seconds",
		Help:      "Duration of judgment service requests",
	}, []string{"model"})

	judgeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dialectic",
		Subsystem: "judge",
		Name:      "request_failures_total",
		Help:      "Number of failed judgment service requests",
	}, []string{"model"})
)

// DefaultModel is used when no model is configured.
const DefaultModel = "meta-llama/Llama-3.3-70B-Instruct"

// OpenAIConfig defines configuration options for the OpenAI-compatible judge.
type OpenAIConfig struct {
	APIKey string
	// BaseURL points at any OpenAI-compatible chat completions endpoint.
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// OpenAIClient implements Client against an OpenAI-compatible chat API.
type OpenAIClient struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIClient builds a judgment client from the provided configuration.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("judge api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1500
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/dialectic-ai/dialectic-api/pkg/judge"),
		logger: logger.With().Str("component", "judge_client").Logger(),
	}, nil
}

// Grade submits the rubric and answer for judgment. It makes a single attempt
// with a bounded deadline and returns an error on any transport, status, or
// parsing problem.
func (c *OpenAIClient) Grade(parent context.Context, request Request) (*Judgment, error) {
	ctx, cancel := context.WithTimeout(parent, c.cfg.Timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "judge.grade", trace.WithAttributes(
		attribute.String("model", c.cfg.Model),
		attribute.Int("rubric_points", len(request.RubricPoints)),
	))
	defer span.End()

	completion := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(request)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, completion)
	judgeDuration.WithLabelValues(c.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, c.fail(span, fmt.Errorf("judge completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, c.fail(span, fmt.Errorf("judge returned no choices"))
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	judgment, err := parseJudgment(content)
	if err != nil {
		c.logger.Debug().Str("raw_response", content).Msg("unparsable judgment payload")
		return nil, c.fail(span, err)
	}

	return judgment, nil
}

func (c *OpenAIClient) fail(span trace.Span, err error) error {
	judgeFailures.WithLabelValues(c.cfg.Model).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func parseJudgment(content string) (*Judgment, error) {
	var judgment Judgment
	if err := json.Unmarshal([]byte(extractJSON(content)), &judgment); err != nil {
		return nil, fmt.Errorf("parse judgment json: %w", err)
	}
	return &judgment, nil
}
