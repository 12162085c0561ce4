package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
	"github.com/dialectic-ai/dialectic-api/internal/handler"
	"github.com/dialectic-ai/dialectic-api/internal/models"
)

type mockEvaluationService struct {
	lastPayload dto.EvaluationRequest
	response    dto.EvaluationResponse
	err         error
	records     []models.EvaluationRecord
	listErr     error
}

func (m *mockEvaluationService) Evaluate(_ context.Context, payload dto.EvaluationRequest) (dto.EvaluationResponse, error) {
	m.lastPayload = payload
	if m.err != nil {
		return dto.EvaluationResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockEvaluationService) ListByTask(_ context.Context, taskID string) ([]models.EvaluationRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockEvaluationService) List(_ context.Context, limit, offset int) (dto.EvaluationHistoryResult, error) {
	if m.listErr != nil {
		return dto.EvaluationHistoryResult{}, m.listErr
	}
	return dto.EvaluationHistoryResult{Items: m.records, TotalItems: int64(len(m.records)), Limit: limit, Offset: offset}, nil
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func postJSON(t *testing.T, path string, payload interface{}) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestEvaluateHandler_Success(t *testing.T) {
	svc := &mockEvaluationService{response: dto.EvaluationResponse{TaskID: "task-1", Score: 0.5, AwardedScore: 1, MaxScore: 2}}
	app := fiber.New()
	handler.NewEvaluateHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	payload := dto.EvaluationRequest{
		TaskID:           "task-1",
		Question:         "What is osmosis?",
		ReferenceAnswers: []dto.ReferenceAnswer{{Text: "Movement of water", MaxScore: 2}},
		PurpleAnswer:     "Water moves across a membrane.",
	}

	resp, err := app.Test(postJSON(t, "/api/v1/evaluate", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                   `json:"success"`
		Data    dto.EvaluationResponse `json:"data"`
		Message string                 `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "evaluation completed", response.Message)
	require.Equal(t, 0.5, response.Data.Score)
	require.Equal(t, "task-1", svc.lastPayload.TaskID)
}

func TestEvaluateHandler_MalformedBody(t *testing.T) {
	svc := &mockEvaluationService{}
	app := fiber.New()
	handler.NewEvaluateHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evaluate", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestEvaluateHandler_ValidationFailure(t *testing.T) {
	validationErr := validator.New().Struct(dto.EvaluationRequest{})
	require.Error(t, validationErr)

	svc := &mockEvaluationService{err: validationErr}
	app := fiber.New()
	handler.NewEvaluateHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	resp, err := app.Test(postJSON(t, "/api/v1/evaluate", map[string]string{"question": "incomplete"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeResponse(t, resp, &response)
	require.False(t, response.Success)
	require.Contains(t, response.Message, "invalid evaluation request")
}

func TestEvaluateHandler_ServiceFailure(t *testing.T) {
	svc := &mockEvaluationService{err: errors.New("engine blew up")}
	app := fiber.New()
	handler.NewEvaluateHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	resp, err := app.Test(postJSON(t, "/api/v1/evaluate", dto.EvaluationRequest{
		TaskID:           "task-1",
		Question:         "q",
		ReferenceAnswers: []dto.ReferenceAnswer{{Text: "ref", MaxScore: 1}},
	}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestHistoryHandler_ListByTask(t *testing.T) {
	svc := &mockEvaluationService{records: []models.EvaluationRecord{{ID: 1, TaskID: "task-1", Score: 1}}}
	app := fiber.New()
	handler.NewHistoryHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/task-1", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                      `json:"success"`
		Data    []models.EvaluationRecord `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data, 1)
}

func TestHistoryHandler_ListRejectsBadLimit(t *testing.T) {
	svc := &mockEvaluationService{}
	app := fiber.New()
	handler.NewHistoryHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/evaluations?limit=abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHistoryHandler_List(t *testing.T) {
	svc := &mockEvaluationService{records: []models.EvaluationRecord{
		{ID: 1, TaskID: "task-1"},
		{ID: 2, TaskID: "task-2"},
	}}
	app := fiber.New()
	handler.NewHistoryHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/evaluations?limit=10&offset=0", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                        `json:"success"`
		Data    dto.EvaluationHistoryResult `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Len(t, response.Data.Items, 2)
	require.EqualValues(t, 2, response.Data.TotalItems)
}
