package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dialectic-ai/dialectic-api/internal/dto"
)

const defaultMessengerTimeout = 60 * time.Second

// Messenger performs the single round trip to a remote participant: it sends
// one question and waits for one text reply. No retries.
type Messenger struct {
	client *http.Client
	logger zerolog.Logger
}

// NewMessenger builds a messenger with the given per-call timeout.
func NewMessenger(timeout time.Duration, logger zerolog.Logger) *Messenger {
	if timeout <= 0 {
		timeout = defaultMessengerTimeout
	}

	return &Messenger{
		client: &http.Client{Timeout: timeout},
		logger: logger.With().Str("component", "messenger").Logger(),
	}
}

type messengerEnvelope struct {
	Message dto.Message `json:"message"`
}

// Ask posts the question to the participant endpoint and returns the text of
// its reply. Transport failures, non-success statuses, and undecodable bodies
// all surface as errors.
func (m *Messenger) Ask(ctx context.Context, endpoint, question string) (string, error) {
	payload, err := json.Marshal(messengerEnvelope{Message: dto.NewTextMessage("user", question)})
	if err != nil {
		return "", fmt.Errorf("encode participant message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build participant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("reach participant: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read participant response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("participant returned status %d", resp.StatusCode)
	}

	var envelope messengerEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode participant response: %w", err)
	}

	return strings.TrimSpace(envelope.Message.Text()), nil
}
