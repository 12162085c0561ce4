package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// TaskEvent is a lifecycle transition broadcast to interested consumers.
type TaskEvent struct {
	TaskID  string    `json:"task_id"`
	State   string    `json:"state"`
	Message string    `json:"message,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// Publisher broadcasts task lifecycle events over NATS. A nil connection or
// empty subject turns every publish into a no-op, so callers never need to
// guard the wiring.
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewPublisher constructs a task event publisher. The subject is derived from
// the channel base, mirroring how other subjects in the system are named.
func NewPublisher(conn *nats.Conn, channelBase string, logger zerolog.Logger) *Publisher {
	subject := ""
	if channelBase != "" {
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".tasks"
	}

	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "task_events").Logger(),
	}
}

// Publish broadcasts an event, fire and forget. Delivery failures are logged
// and swallowed; the evaluation outcome never depends on event delivery.
func (p *Publisher) Publish(event TaskEvent) {
	if p == nil || p.conn == nil || p.subject == "" {
		return
	}

	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode task event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish task event")
	}
}
