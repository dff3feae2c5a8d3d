package conversation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cargoline/tracedash/internal/conversation/model"
	"github.com/cargoline/tracedash/internal/telemetry"
	telemetrymodel "github.com/cargoline/tracedash/internal/telemetry/model"
	"github.com/cargoline/tracedash/internal/tracestore"
	"go.uber.org/zap"
)

const (
	convIDColumn    = "convId"
	firstSeenColumn = "firstSeen"
	spanCountColumn = "spanCount"
	traceIDColumn   = "operation_Id"
)

// ConversationQueryService lists recent conversations and resolves the full
// span set belonging to one conversation.
type ConversationQueryService interface {
	// GetRecentConversations returns the distinct conversation ids observed
	// in dependency telemetry within the window, newest first, capped at limit.
	GetRecentConversations(ctx context.Context, hours int, limit int) ([]model.ConversationSummary, error)
	// GetConversationSpans returns every span of every trace that carries the
	// conversation id, deduplicated by span id (earliest row wins) and
	// ordered ascending by start time.
	GetConversationSpans(ctx context.Context, conversationID string, hours int) ([]telemetrymodel.Span, error)
}

type ConversationService struct {
	client tracestore.QueryClient
	parser *telemetry.Parser
	logger *zap.Logger
}

func NewConversationService(
	client tracestore.QueryClient,
	parser *telemetry.Parser,
	logger *zap.Logger,
) *ConversationService {
	return &ConversationService{
		client: client,
		parser: parser,
		logger: logger,
	}
}

func (cs *ConversationService) GetRecentConversations(
	ctx context.Context,
	hours int,
	limit int,
) ([]model.ConversationSummary, error) {
	res, err := cs.client.Query(ctx, recentConversationsQuery(hours, limit))
	if err != nil {
		cs.logger.Error("Error when querying recent conversations", zap.Error(err))
		return nil, err
	}
	table := res.PrimaryTable()
	if table == nil {
		return []model.ConversationSummary{}, nil
	}

	idIdx := table.ColumnIndex(convIDColumn)
	firstSeenIdx := table.ColumnIndex(firstSeenColumn)
	countIdx := table.ColumnIndex(spanCountColumn)
	if idIdx < 0 {
		return nil, fmt.Errorf("recent conversations result is missing the %s column", convIDColumn)
	}

	summaries := make([]model.ConversationSummary, 0, len(table.Rows))
	for _, row := range table.Rows {
		id := stringCell(row, idIdx)
		if id == "" {
			continue
		}
		summaries = append(summaries, model.ConversationSummary{
			ID:        id,
			FirstSeen: timeCell(row, firstSeenIdx),
			SpanCount: intCell(row, countIdx),
		})
	}
	return summaries, nil
}

func (cs *ConversationService) GetConversationSpans(
	ctx context.Context,
	conversationID string,
	hours int,
) ([]telemetrymodel.Span, error) {
	traceIDs, err := cs.resolveTraceIDs(ctx, conversationID, hours)
	if err != nil {
		return nil, err
	}
	if len(traceIDs) == 0 {
		cs.logger.Info(
			"No traces found for conversation",
			zap.String("conversationId", conversationID),
		)
		return []telemetrymodel.Span{}, nil
	}

	res, err := cs.client.Query(ctx, spansForTraceIDsQuery(traceIDs, hours))
	if err != nil {
		cs.logger.Error(
			"Error when querying spans for conversation",
			zap.String("conversationId", conversationID),
			zap.Error(err),
		)
		return nil, err
	}

	spans := cs.parser.ParseRows(res.PrimaryTable())
	spans = dedupeSpans(spans)
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].StartTime.Before(spans[j].StartTime)
	})
	return spans, nil
}

// resolveTraceIDs is the first phase of the conversation lookup: only
// dependency spans carry the conversation id, so the trace ids they resolve
// to are what pulls in the remaining spans (tool executions included).
func (cs *ConversationService) resolveTraceIDs(
	ctx context.Context,
	conversationID string,
	hours int,
) ([]string, error) {
	res, err := cs.client.Query(ctx, conversationTraceIDsQuery(conversationID, hours))
	if err != nil {
		cs.logger.Error(
			"Error when resolving trace ids for conversation",
			zap.String("conversationId", conversationID),
			zap.Error(err),
		)
		return nil, err
	}
	table := res.PrimaryTable()
	if table == nil {
		return nil, nil
	}
	idx := table.ColumnIndex(traceIDColumn)
	if idx < 0 {
		return nil, nil
	}
	traceIDs := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if id := stringCell(row, idx); id != "" {
			traceIDs = append(traceIDs, id)
		}
	}
	return traceIDs, nil
}

// dedupeSpans collapses repeated span ids to the earliest-timestamp instance.
// The source backend is known to emit duplicate rows for one span.
func dedupeSpans(spans []telemetrymodel.Span) []telemetrymodel.Span {
	earliest := make(map[string]int, len(spans))
	deduped := make([]telemetrymodel.Span, 0, len(spans))
	for _, span := range spans {
		if span.ID == "" {
			deduped = append(deduped, span)
			continue
		}
		if idx, seen := earliest[span.ID]; seen {
			if span.StartTime.Before(deduped[idx].StartTime) {
				deduped[idx] = span
			}
			continue
		}
		earliest[span.ID] = len(deduped)
		deduped = append(deduped, span)
	}
	return deduped
}

func stringCell(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return ""
}

func timeCell(row []interface{}, idx int) time.Time {
	raw := stringCell(row, idx)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func intCell(row []interface{}, idx int) int {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	switch v := row[idx].(type) {
	case float64:
		return int(v)
	case string:
		n := 0
		_, err := fmt.Sscanf(v, "%d", &n)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
