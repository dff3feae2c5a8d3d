package telemetry

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cargoline/tracedash/internal/telemetry/model"
	storemodel "github.com/cargoline/tracedash/internal/tracestore/model"
	"go.uber.org/zap"
)

// Column names of the span export schema. The timestamp and duration columns
// have two known spellings depending on the backend vintage.
var (
	timestampColumns = []string{"timestamp", "time"}
	durationColumns  = []string{"duration", "durationMs"}
)

const (
	idColumn         = "id"
	traceIDColumn    = "operation_Id"
	parentIDColumn   = "operation_ParentId"
	nameColumn       = "name"
	successColumn    = "success"
	dimensionsColumn = "customDimensions"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
}

// Parser converts tabular trace store rows into normalized spans. Malformed
// cells degrade to zero values or raw-string retention; parsing never fails.
type Parser struct {
	logger *zap.Logger
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// ParseRows normalizes every row of the table into a Span. A nil table
// yields an empty slice.
func (p *Parser) ParseRows(table *storemodel.Table) []model.Span {
	if table == nil {
		return []model.Span{}
	}
	spans := make([]model.Span, 0, len(table.Rows))
	for _, row := range table.Rows {
		spans = append(spans, p.parseRow(table, row))
	}
	return spans
}

func (p *Parser) parseRow(table *storemodel.Table, row []interface{}) model.Span {
	attributes := parseAttributes(cellAt(table, row, dimensionsColumn))

	span := model.Span{
		ID:         cellString(cellAt(table, row, idColumn)),
		TraceID:    cellString(cellAt(table, row, traceIDColumn)),
		ParentID:   cellString(cellAt(table, row, parentIDColumn)),
		StartTime:  parseTimestamp(firstCell(table, row, timestampColumns)),
		DurationMs: parseFloat(firstCell(table, row, durationColumns)),
		Name:       cellString(cellAt(table, row, nameColumn)),
		Success:    parseSuccess(cellAt(table, row, successColumn)),
		Attributes: attributes,
	}
	if span.DurationMs < 0 {
		span.DurationMs = 0
	}

	span.Operation = classifyOperation(attributes[OperationNameKey])
	span.Model = attributes[RequestModelKey]
	span.AgentName = attributes[AgentNameKey]
	span.ToolName = attributes[ToolNameKey]
	span.ToolArgs = attributes[ToolArgumentsKey]
	span.ToolResult = attributes[ToolResultKey]
	span.InputTokens = parseTokens(attributes[InputTokensKey])
	span.OutputTokens = parseTokens(attributes[OutputTokensKey])
	span.InputMessages = p.parseMessages(attributes[InputMessagesKey])
	span.OutputMessages = p.parseMessages(attributes[OutputMessagesKey])
	return span
}

func classifyOperation(name string) model.Operation {
	switch name {
	case string(model.OperationChat):
		return model.OperationChat
	case string(model.OperationExecuteTool):
		return model.OperationExecuteTool
	default:
		return model.OperationUnclassified
	}
}

func cellAt(table *storemodel.Table, row []interface{}, column string) interface{} {
	idx := table.ColumnIndex(column)
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func firstCell(table *storemodel.Table, row []interface{}, columns []string) interface{} {
	for _, column := range columns {
		if value := cellAt(table, row, column); value != nil {
			return value
		}
	}
	return nil
}

func cellString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func parseTimestamp(value interface{}) time.Time {
	raw := cellString(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// parseTokens parses a token count, tolerating backends that encode numbers
// as strings. Missing or non-numeric values count as 0.
func parseTokens(raw string) int {
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseSuccess(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return !strings.EqualFold(v, "false")
	default:
		return true
	}
}

// parseAttributes flattens the custom dimensions JSON object into a string
// map, retaining every raw field. Nested values are kept as compact JSON.
func parseAttributes(value interface{}) map[string]string {
	attributes := make(map[string]string)
	raw := cellString(value)
	if raw == "" {
		return attributes
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return attributes
	}
	for key, v := range decoded {
		attributes[key] = cellString(v)
	}
	return attributes
}

type rawMessage struct {
	Role  string    `json:"role"`
	Parts []rawPart `json:"parts"`
}

type rawPart struct {
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    json.RawMessage `json:"result"`
	CallID    string          `json:"call_id"`
}

// parseMessages decodes a role-tagged message array. Arguments and results
// may be JSON-encoded objects or plain strings depending on the
// instrumentation version; both are retained as strings. Malformed input
// yields nil rather than an error.
func (p *Parser) parseMessages(raw string) []model.Message {
	if raw == "" {
		return nil
	}
	var decoded []rawMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		p.logger.Debug("Failed to decode message attribute, retaining raw value", zap.Error(err))
		return nil
	}
	messages := make([]model.Message, 0, len(decoded))
	for _, msg := range decoded {
		parts := make([]model.MessagePart, 0, len(msg.Parts))
		for _, part := range msg.Parts {
			parts = append(parts, model.MessagePart{
				Type:      model.PartType(part.Type),
				Text:      rawAsString(part.Content),
				Name:      part.Name,
				Arguments: rawAsString(part.Arguments),
				Result:    rawAsString(part.Result),
				CallID:    part.CallID,
			})
		}
		messages = append(messages, model.Message{Role: msg.Role, Parts: parts})
	}
	return messages
}

func rawAsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
