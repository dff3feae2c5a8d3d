package model

import "time"

// Operation is the semantic kind of a span.
type Operation string

const (
	OperationChat         Operation = "chat"
	OperationExecuteTool  Operation = "execute_tool"
	OperationUnclassified Operation = ""
)

// PartType discriminates the content of one message part.
type PartType string

const (
	PartText             PartType = "text"
	PartToolCall         PartType = "tool_call"
	PartToolCallResponse PartType = "tool_call_response"
)

// MessagePart is one ordered piece of a message: plain text, a tool call
// emitted by the model, or a tool call response fed back to it.
type MessagePart struct {
	Type      PartType `json:"type"`
	Text      string   `json:"content,omitempty"`
	Name      string   `json:"name,omitempty"`
	Arguments string   `json:"arguments,omitempty"`
	Result    string   `json:"result,omitempty"`
	CallID    string   `json:"call_id,omitempty"`
}

// Message is one role-tagged message exchanged with the model.
type Message struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}

// Span is one normalized telemetry record. Immutable once parsed.
type Span struct {
	ID       string
	TraceID  string
	ParentID string

	StartTime  time.Time
	DurationMs float64

	Name      string
	Operation Operation

	Model          string
	AgentName      string
	ToolName       string
	ToolArgs       string
	ToolResult     string
	InputMessages  []Message
	OutputMessages []Message
	InputTokens    int
	OutputTokens   int

	Success    bool
	Attributes map[string]string
}
