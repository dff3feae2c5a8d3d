package model

// Kind discriminates the four node variants of the dashboard tree.
type Kind string

const (
	KindConversation Kind = "conversation"
	KindRun          Kind = "run"
	KindRunStep      Kind = "run_step"
	KindTool         Kind = "tool"
)

// StepKind labels a run step by whether its chat completion claimed any
// tool executions.
type StepKind string

const (
	StepToolCalls       StepKind = "tool_calls"
	StepMessageCreation StepKind = "message_creation"
)

// Node is one node of the conversation tree. The tree is rebuilt fresh from
// the span list on every query; nothing here is persisted.
//
// A run node references every span of its trace, a run step references its
// one chat span, a tool node references its one tool span, and the
// conversation root references the full span set.
type Node struct {
	Kind     Kind     `json:"kind"`
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Duration string   `json:"duration,omitempty"`
	Tokens   *int     `json:"tokens,omitempty"`
	StepKind StepKind `json:"step_kind,omitempty"`
	Children []*Node  `json:"children,omitempty"`
	SpanIDs  []string `json:"span_ids"`
}
