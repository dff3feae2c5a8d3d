package tree

import (
	"sort"
	"strings"
	"time"

	telemetrymodel "github.com/cargoline/tracedash/internal/telemetry/model"
	"github.com/cargoline/tracedash/internal/tree/model"
)

// toolClaimTolerance absorbs clock skew between independently instrumented
// chat and tool spans: a tool span recorded up to 100ms before its chat span
// is still claimable by that step.
const toolClaimTolerance = 100 * time.Millisecond

const invokeAgentMarker = "invoke_agent"

// BuildTree assembles the conversation → run → run-step → tool hierarchy
// from a flat span list. It is pure and total: it never fails, and empty
// input yields a root with no children and zero aggregates.
func BuildTree(conversationID string, spans []telemetrymodel.Span) *model.Node {
	groups := groupByTrace(spans)

	runs := make([]*model.Node, 0, len(groups))
	totalTokens := 0
	totalDurationMs := 0.0
	spanIDs := make([]string, 0, len(spans))
	for _, group := range groups {
		run := buildRun(group)
		runs = append(runs, run)
		totalTokens += *run.Tokens
		// The conversation total is the sum of per-trace maxima, kept for
		// compatibility with the production dashboard rather than a true
		// end-to-end wall clock.
		totalDurationMs += maxDurationMs(group.spans)
	}
	for _, span := range spans {
		spanIDs = append(spanIDs, span.ID)
	}

	root := &model.Node{
		Kind:     model.KindConversation,
		ID:       conversationID,
		Label:    "Conversation " + truncateID(conversationID),
		Tokens:   &totalTokens,
		Children: runs,
		SpanIDs:  spanIDs,
	}
	if totalDurationMs > 0 {
		root.Duration = FormatDuration(totalDurationMs)
	}
	return root
}

type traceGroup struct {
	traceID string
	spans   []telemetrymodel.Span
}

// groupByTrace partitions spans by trace id and orders the groups ascending
// by their earliest span start time. Trace ids carry no inherent ordering,
// so the minimum start time is the conversation's turn order.
func groupByTrace(spans []telemetrymodel.Span) []traceGroup {
	byTrace := make(map[string][]telemetrymodel.Span)
	order := make([]string, 0)
	for _, span := range spans {
		if _, seen := byTrace[span.TraceID]; !seen {
			order = append(order, span.TraceID)
		}
		byTrace[span.TraceID] = append(byTrace[span.TraceID], span)
	}

	groups := make([]traceGroup, 0, len(byTrace))
	for _, traceID := range order {
		groups = append(groups, traceGroup{traceID: traceID, spans: byTrace[traceID]})
	}
	sort.SliceStable(groups, func(i, j int) bool {
		ti, tj := minStartTime(groups[i].spans), minStartTime(groups[j].spans)
		if ti.Equal(tj) {
			return groups[i].traceID < groups[j].traceID
		}
		return ti.Before(tj)
	})
	return groups
}

func buildRun(group traceGroup) *model.Node {
	var chatSpans, toolSpans []telemetrymodel.Span
	var invocationSpan *telemetrymodel.Span
	for i, span := range group.spans {
		switch span.Operation {
		case telemetrymodel.OperationChat:
			chatSpans = append(chatSpans, span)
		case telemetrymodel.OperationExecuteTool:
			toolSpans = append(toolSpans, span)
		default:
			if invocationSpan == nil && strings.Contains(span.Name, invokeAgentMarker) {
				invocationSpan = &group.spans[i]
			}
		}
	}
	sort.SliceStable(chatSpans, func(i, j int) bool {
		return chatSpans[i].StartTime.Before(chatSpans[j].StartTime)
	})

	claimed := make(map[int]bool, len(toolSpans))
	steps := make([]*model.Node, 0, len(chatSpans))
	runTokens := 0
	for _, chat := range chatSpans {
		step := buildStep(chat, toolSpans, claimed)
		steps = append(steps, step)
		runTokens += *step.Tokens
	}

	runDurationMs := maxDurationMs(group.spans)
	if invocationSpan != nil {
		runDurationMs = invocationSpan.DurationMs
	}

	spanIDs := make([]string, 0, len(group.spans))
	for _, span := range group.spans {
		spanIDs = append(spanIDs, span.ID)
	}

	run := &model.Node{
		Kind:     model.KindRun,
		ID:       group.traceID,
		Label:    "Run " + truncateID(group.traceID),
		Tokens:   &runTokens,
		Children: steps,
		SpanIDs:  spanIDs,
	}
	if runDurationMs > 0 {
		run.Duration = FormatDuration(runDurationMs)
	}
	return run
}

// buildStep claims eligible tool spans for one chat span. Assignment is
// greedy and single-pass: the first step whose output references a tool name
// wins the earliest unclaimed matching tool span, and a claimed span is
// never reconsidered for later steps.
func buildStep(
	chat telemetrymodel.Span,
	toolSpans []telemetrymodel.Span,
	claimed map[int]bool,
) *model.Node {
	wanted := toolCallNames(chat.OutputMessages)
	earliestClaimable := chat.StartTime.Add(-toolClaimTolerance)

	var tools []*model.Node
	for i, tool := range toolSpans {
		if claimed[i] || !wanted[tool.ToolName] {
			continue
		}
		if tool.StartTime.Before(earliestClaimable) {
			continue
		}
		claimed[i] = true
		tools = append(tools, buildToolNode(tool))
	}

	stepKind := model.StepMessageCreation
	if len(tools) > 0 {
		stepKind = model.StepToolCalls
	}
	stepTokens := chat.InputTokens + chat.OutputTokens

	step := &model.Node{
		Kind:     model.KindRunStep,
		ID:       chat.ID,
		Label:    string(stepKind),
		StepKind: stepKind,
		Tokens:   &stepTokens,
		Children: tools,
		SpanIDs:  []string{chat.ID},
	}
	if chat.DurationMs > 0 {
		step.Duration = FormatDuration(chat.DurationMs)
	}
	return step
}

func buildToolNode(tool telemetrymodel.Span) *model.Node {
	label := tool.ToolName
	if label == "" {
		label = tool.Name
	}
	node := &model.Node{
		Kind:    model.KindTool,
		ID:      tool.ID,
		Label:   label,
		SpanIDs: []string{tool.ID},
	}
	if tool.DurationMs > 0 {
		node.Duration = FormatDuration(tool.DurationMs)
	}
	return node
}

// toolCallNames collects the tool names referenced by tool_call parts in the
// chat span's output messages.
func toolCallNames(messages []telemetrymodel.Message) map[string]bool {
	names := make(map[string]bool)
	for _, message := range messages {
		for _, part := range message.Parts {
			if part.Type == telemetrymodel.PartToolCall && part.Name != "" {
				names[part.Name] = true
			}
		}
	}
	return names
}

func minStartTime(spans []telemetrymodel.Span) time.Time {
	min := spans[0].StartTime
	for _, span := range spans[1:] {
		if span.StartTime.Before(min) {
			min = span.StartTime
		}
	}
	return min
}

func maxDurationMs(spans []telemetrymodel.Span) float64 {
	max := 0.0
	for _, span := range spans {
		if span.DurationMs > max {
			max = span.DurationMs
		}
	}
	return max
}
