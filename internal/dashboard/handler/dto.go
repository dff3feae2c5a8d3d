package handler

import (
	"time"

	conversationmodel "github.com/cargoline/tracedash/internal/conversation/model"
	diagnosticsmodel "github.com/cargoline/tracedash/internal/diagnostics/model"
	telemetrymodel "github.com/cargoline/tracedash/internal/telemetry/model"
	treemodel "github.com/cargoline/tracedash/internal/tree/model"
)

// ConversationSummaryDTO is one recent conversation.
// @swagger:model ConversationSummaryDTO
type ConversationSummaryDTO struct {
	ID        string    `json:"id"`
	FirstSeen time.Time `json:"first_seen"`
	SpanCount int       `json:"span_count"`
}

// RecentConversationsResponseDTO lists recent conversations. Diagnostics is
// populated only when the query came back empty.
// @swagger:model RecentConversationsResponseDTO
type RecentConversationsResponseDTO struct {
	Conversations []ConversationSummaryDTO `json:"conversations"`
	Diagnostics   *DiagnosticsReportDTO    `json:"diagnostics,omitempty"`
}

// DiagnosticsReportDTO explains an empty or malformed result set.
// @swagger:model DiagnosticsReportDTO
type DiagnosticsReportDTO struct {
	HasDependencies        bool     `json:"has_dependencies"`
	HasTraces              bool     `json:"has_traces"`
	TotalDependencies      int      `json:"total_dependencies"`
	DependenciesWithConvID int      `json:"dependencies_with_conv_id"`
	SamplePropertyKeys     []string `json:"sample_property_keys"`
}

// TreeNodeDTO is one node of the conversation tree.
// @swagger:model TreeNodeDTO
type TreeNodeDTO struct {
	Kind     string        `json:"kind"`
	ID       string        `json:"id"`
	Label    string        `json:"label"`
	Duration string        `json:"duration,omitempty"`
	Tokens   *int          `json:"tokens,omitempty"`
	StepKind string        `json:"step_kind,omitempty"`
	Children []TreeNodeDTO `json:"children,omitempty"`
	SpanIDs  []string      `json:"span_ids"`
}

// MessagePartDTO is one ordered piece of a model message.
type MessagePartDTO struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Result    string `json:"result,omitempty"`
	CallID    string `json:"call_id,omitempty"`
}

// MessageDTO is one role-tagged model message.
type MessageDTO struct {
	Role  string           `json:"role"`
	Parts []MessagePartDTO `json:"parts"`
}

// SpanDTO is the per-span detail backing the dashboard's detail panels.
// @swagger:model SpanDTO
type SpanDTO struct {
	ID             string            `json:"id"`
	TraceID        string            `json:"trace_id"`
	ParentID       string            `json:"parent_id,omitempty"`
	StartTime      time.Time         `json:"start_time"`
	DurationMs     float64           `json:"duration_ms"`
	Name           string            `json:"name"`
	Operation      string            `json:"operation,omitempty"`
	Model          string            `json:"model,omitempty"`
	AgentName      string            `json:"agent_name,omitempty"`
	ToolName       string            `json:"tool_name,omitempty"`
	ToolArgs       string            `json:"tool_args,omitempty"`
	ToolResult     string            `json:"tool_result,omitempty"`
	InputMessages  []MessageDTO      `json:"input_messages,omitempty"`
	OutputMessages []MessageDTO      `json:"output_messages,omitempty"`
	InputTokens    int               `json:"input_tokens"`
	OutputTokens   int               `json:"output_tokens"`
	Success        bool              `json:"success"`
	Attributes     map[string]string `json:"attributes"`
}

// ConversationDetailResponseDTO is the produced tree contract: the assembled
// hierarchy plus the flat deduplicated span list behind it.
// @swagger:model ConversationDetailResponseDTO
type ConversationDetailResponseDTO struct {
	Tree  TreeNodeDTO `json:"tree"`
	Spans []SpanDTO   `json:"spans"`
}

// ErrorMessage is the body of an error response.
// @swagger:model ErrorMessage
type ErrorMessage struct {
	Message string `json:"message"`
}

func toConversationSummaryDTOs(summaries []conversationmodel.ConversationSummary) []ConversationSummaryDTO {
	dtos := make([]ConversationSummaryDTO, len(summaries))
	for i, summary := range summaries {
		dtos[i] = ConversationSummaryDTO{
			ID:        summary.ID,
			FirstSeen: summary.FirstSeen,
			SpanCount: summary.SpanCount,
		}
	}
	return dtos
}

func toDiagnosticsReportDTO(report diagnosticsmodel.Report) *DiagnosticsReportDTO {
	return &DiagnosticsReportDTO{
		HasDependencies:        report.HasDependencies,
		HasTraces:              report.HasTraces,
		TotalDependencies:      report.TotalDependencies,
		DependenciesWithConvID: report.DependenciesWithConvID,
		SamplePropertyKeys:     report.SamplePropertyKeys,
	}
}

func toTreeNodeDTO(node *treemodel.Node) TreeNodeDTO {
	children := make([]TreeNodeDTO, len(node.Children))
	for i, child := range node.Children {
		children[i] = toTreeNodeDTO(child)
	}
	if len(children) == 0 {
		children = nil
	}
	return TreeNodeDTO{
		Kind:     string(node.Kind),
		ID:       node.ID,
		Label:    node.Label,
		Duration: node.Duration,
		Tokens:   node.Tokens,
		StepKind: string(node.StepKind),
		Children: children,
		SpanIDs:  node.SpanIDs,
	}
}

func toSpanDTOs(spans []telemetrymodel.Span) []SpanDTO {
	dtos := make([]SpanDTO, len(spans))
	for i, span := range spans {
		dtos[i] = SpanDTO{
			ID:             span.ID,
			TraceID:        span.TraceID,
			ParentID:       span.ParentID,
			StartTime:      span.StartTime,
			DurationMs:     span.DurationMs,
			Name:           span.Name,
			Operation:      string(span.Operation),
			Model:          span.Model,
			AgentName:      span.AgentName,
			ToolName:       span.ToolName,
			ToolArgs:       span.ToolArgs,
			ToolResult:     span.ToolResult,
			InputMessages:  toMessageDTOs(span.InputMessages),
			OutputMessages: toMessageDTOs(span.OutputMessages),
			InputTokens:    span.InputTokens,
			OutputTokens:   span.OutputTokens,
			Success:        span.Success,
			Attributes:     span.Attributes,
		}
	}
	return dtos
}

func toMessageDTOs(messages []telemetrymodel.Message) []MessageDTO {
	if messages == nil {
		return nil
	}
	dtos := make([]MessageDTO, len(messages))
	for i, message := range messages {
		parts := make([]MessagePartDTO, len(message.Parts))
		for j, part := range message.Parts {
			parts[j] = MessagePartDTO{
				Type:      string(part.Type),
				Text:      part.Text,
				Name:      part.Name,
				Arguments: part.Arguments,
				Result:    part.Result,
				CallID:    part.CallID,
			}
		}
		dtos[i] = MessageDTO{Role: message.Role, Parts: parts}
	}
	return dtos
}
