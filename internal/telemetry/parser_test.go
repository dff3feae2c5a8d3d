package telemetry

import (
	"testing"
	"time"

	"github.com/cargoline/tracedash/internal/telemetry/model"
	storemodel "github.com/cargoline/tracedash/internal/tracestore/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spanTable(columns []string, rows ...[]interface{}) *storemodel.Table {
	cols := make([]storemodel.Column, len(columns))
	for i, name := range columns {
		cols[i] = storemodel.Column{Name: name, Type: "string"}
	}
	return &storemodel.Table{Name: "PrimaryResult", Columns: cols, Rows: rows}
}

var defaultColumns = []string{
	"timestamp", "id", "operation_Id", "operation_ParentId",
	"name", "duration", "success", "customDimensions",
}

func TestParseRows_NormalizesRow(t *testing.T) {
	parser := NewParser(zap.NewNop())
	table := spanTable(defaultColumns, []interface{}{
		"2025-06-01T12:00:00.5Z", "span-1", "trace-1", "parent-1",
		"chat gpt-4o", 812.5, "True",
		`{
			"gen_ai.operation.name": "chat",
			"gen_ai.request.model": "gpt-4o",
			"gen_ai.agent.name": "LogisticsAgent",
			"gen_ai.usage.input_tokens": 321,
			"gen_ai.usage.output_tokens": "123",
			"gen_ai.output.messages": "[{\"role\":\"assistant\",\"parts\":[{\"type\":\"tool_call\",\"name\":\"filter_flights\",\"arguments\":{\"origin\":\"AMS\"}}]}]"
		}`,
	})

	spans := parser.ParseRows(table)
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "span-1", span.ID)
	assert.Equal(t, "trace-1", span.TraceID)
	assert.Equal(t, "parent-1", span.ParentID)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 500000000, time.UTC), span.StartTime)
	assert.Equal(t, 812.5, span.DurationMs)
	assert.Equal(t, model.OperationChat, span.Operation)
	assert.Equal(t, "gpt-4o", span.Model)
	assert.Equal(t, "LogisticsAgent", span.AgentName)
	assert.Equal(t, 321, span.InputTokens)
	assert.Equal(t, 123, span.OutputTokens)
	assert.True(t, span.Success)

	require.Len(t, span.OutputMessages, 1)
	require.Len(t, span.OutputMessages[0].Parts, 1)
	part := span.OutputMessages[0].Parts[0]
	assert.Equal(t, model.PartToolCall, part.Type)
	assert.Equal(t, "filter_flights", part.Name)
	assert.JSONEq(t, `{"origin":"AMS"}`, part.Arguments)

	// raw fields are retained for the detail panel
	assert.Equal(t, "chat", span.Attributes["gen_ai.operation.name"])
	assert.Equal(t, "321", span.Attributes["gen_ai.usage.input_tokens"])
}

func TestParseRows_TimestampAliases(t *testing.T) {
	parser := NewParser(zap.NewNop())
	columns := []string{"time", "id", "operation_Id", "name", "duration", "customDimensions"}
	table := spanTable(columns, []interface{}{
		"2025-06-01T12:00:00Z", "span-1", "trace-1", "chat", 10.0, "{}",
	})
	spans := parser.ParseRows(table)
	require.Len(t, spans, 1)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), spans[0].StartTime)
}

func TestParseRows_MalformedToolArgsRetainedRaw(t *testing.T) {
	parser := NewParser(zap.NewNop())
	table := spanTable(defaultColumns, []interface{}{
		"2025-06-01T12:00:00Z", "span-1", "trace-1", "",
		"execute_tool filter_flights", 40.0, "True",
		`{
			"gen_ai.operation.name": "execute_tool",
			"gen_ai.tool.name": "filter_flights",
			"gen_ai.tool.call.arguments": "{not valid json"
		}`,
	})

	var spans []model.Span
	assert.NotPanics(t, func() {
		spans = parser.ParseRows(table)
	})
	require.Len(t, spans, 1)
	assert.Equal(t, model.OperationExecuteTool, spans[0].Operation)
	assert.Equal(t, "filter_flights", spans[0].ToolName)
	assert.Equal(t, "{not valid json", spans[0].ToolArgs)
}

func TestParseRows_MalformedMessagesDegradeToNil(t *testing.T) {
	parser := NewParser(zap.NewNop())
	table := spanTable(defaultColumns, []interface{}{
		"2025-06-01T12:00:00Z", "span-1", "trace-1", "",
		"chat", 10.0, "True",
		`{"gen_ai.operation.name": "chat", "gen_ai.output.messages": "[{bad"}`,
	})
	spans := parser.ParseRows(table)
	require.Len(t, spans, 1)
	assert.Nil(t, spans[0].OutputMessages)
	// raw value stays available under the attribute key
	assert.Equal(t, "[{bad", spans[0].Attributes[OutputMessagesKey])
}

func TestParseRows_TokenFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"missing tokens default to zero", `{}`, 0},
		{"non-numeric tokens default to zero", `{"gen_ai.usage.input_tokens": "lots"}`, 0},
		{"string-encoded numbers parse", `{"gen_ai.usage.input_tokens": "42"}`, 42},
		{"float-encoded numbers truncate", `{"gen_ai.usage.input_tokens": 17.9}`, 17},
	}
	parser := NewParser(zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := spanTable(defaultColumns, []interface{}{
				"2025-06-01T12:00:00Z", "span-1", "trace-1", "", "chat", 10.0, "True", tt.raw,
			})
			spans := parser.ParseRows(table)
			require.Len(t, spans, 1)
			assert.Equal(t, tt.expected, spans[0].InputTokens)
		})
	}
}

func TestParseRows_MalformedDimensionsAndNilTable(t *testing.T) {
	parser := NewParser(zap.NewNop())

	assert.Empty(t, parser.ParseRows(nil))

	table := spanTable(defaultColumns, []interface{}{
		"not a timestamp", "span-1", "trace-1", "", "chat", "not a number", 17, "{broken",
	})
	spans := parser.ParseRows(table)
	require.Len(t, spans, 1)
	span := spans[0]
	assert.True(t, span.StartTime.IsZero())
	assert.Equal(t, 0.0, span.DurationMs)
	assert.True(t, span.Success)
	assert.Empty(t, span.Attributes)
	assert.Equal(t, model.OperationUnclassified, span.Operation)
}

func TestParseRows_NegativeDurationClampedToZero(t *testing.T) {
	parser := NewParser(zap.NewNop())
	table := spanTable(defaultColumns, []interface{}{
		"2025-06-01T12:00:00Z", "span-1", "trace-1", "", "chat", -5.0, "True", "{}",
	})
	spans := parser.ParseRows(table)
	require.Len(t, spans, 1)
	assert.Equal(t, 0.0, spans[0].DurationMs)
}

func TestCoalesceKeys(t *testing.T) {
	attributes := map[string]string{
		"gen_ai.thread.id": "thread-1",
		"conversation_id":  "legacy-1",
	}
	assert.Equal(t, "thread-1", CoalesceKeys(attributes, ConversationIDKeys...))
	assert.Equal(t, "", CoalesceKeys(map[string]string{}, ConversationIDKeys...))
	assert.Equal(
		t,
		"legacy-1",
		CoalesceKeys(attributes, "gen_ai.conversation.id", "conversation_id"),
	)
}
