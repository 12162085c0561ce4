package dto

import (
	"strings"
	"time"
)

// MessagePart is one piece of a protocol message. Only text parts are
// understood; other kinds are ignored.
type MessagePart struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Message is the envelope exchanged with remote participants.
type Message struct {
	Role  string        `json:"role,omitempty"`
	Parts []MessagePart `json:"parts"`
}

// Text concatenates the message's text parts.
func (m Message) Text() string {
	var texts []string
	for _, part := range m.Parts {
		if part.Kind != "" && part.Kind != "text" {
			continue
		}
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// NewTextMessage wraps plain text into a protocol message.
func NewTextMessage(role, text string) Message {
	return Message{Role: role, Parts: []MessagePart{{Kind: "text", Text: text}}}
}

// TaskSendRequest is the inbound payload for delegated evaluation tasks. The
// message text is expected to carry a JSON-encoded DelegationRequest.
type TaskSendRequest struct {
	ID      string  `json:"id"`
	Message Message `json:"message"`
}

// DelegationRequest names the remote participants and carries the loosely
// typed configuration bag supplied by the coordinating party. The config keys
// are validated eagerly before any network activity.
type DelegationRequest struct {
	Participants map[string]string      `json:"participants"`
	Config       map[string]interface{} `json:"config"`
}

// TaskStatusUpdate is one recorded lifecycle transition.
type TaskStatusUpdate struct {
	State     string    `json:"state"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskResponse is the terminal snapshot of a delegated task.
type TaskResponse struct {
	ID      string              `json:"id"`
	State   string              `json:"state"`
	Updates []TaskStatusUpdate  `json:"updates"`
	Result  *EvaluationResponse `json:"result,omitempty"`
}

// AgentSkill advertises one capability on the agent card.
type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// AgentCapabilities describes protocol-level features.
type AgentCapabilities struct {
	Streaming bool `json:"streaming"`
}

// AgentCard is the public identity document served at a well-known path.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	DefaultInputModes  []string          `json:"default_input_modes"`
	DefaultOutputModes []string          `json:"default_output_modes"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	Skills             []AgentSkill      `json:"skills"`
}
