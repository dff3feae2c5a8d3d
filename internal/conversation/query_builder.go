package conversation

import (
	"fmt"
	"strings"

	"github.com/cargoline/tracedash/internal/telemetry"
)

// ConversationIDExpression coalesces the known historical spellings of the
// conversation id attribute, first non-empty wins. Shared with the
// diagnostics probes.
func ConversationIDExpression() string {
	parts := make([]string, 0, len(telemetry.ConversationIDKeys))
	for _, key := range telemetry.ConversationIDKeys {
		parts = append(parts, fmt.Sprintf("tostring(customDimensions[%s])", quoteLiteral(key)))
	}
	return fmt.Sprintf("coalesce(%s)", strings.Join(parts, ", "))
}

func recentConversationsQuery(hours int, limit int) string {
	return strings.Join([]string{
		"dependencies",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		fmt.Sprintf("| extend convId = %s", ConversationIDExpression()),
		"| where isnotempty(convId)",
		"| summarize firstSeen = min(timestamp), spanCount = count() by convId",
		"| order by firstSeen desc",
		fmt.Sprintf("| take %d", limit),
	}, "\n")
}

func conversationTraceIDsQuery(conversationID string, hours int) string {
	return strings.Join([]string{
		"dependencies",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		fmt.Sprintf("| extend convId = %s", ConversationIDExpression()),
		fmt.Sprintf("| where convId == %s", quoteLiteral(conversationID)),
		"| distinct operation_Id",
	}, "\n")
}

func spansForTraceIDsQuery(traceIDs []string, hours int) string {
	quoted := make([]string, 0, len(traceIDs))
	for _, id := range traceIDs {
		quoted = append(quoted, quoteLiteral(id))
	}
	return strings.Join([]string{
		"union dependencies, traces",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		fmt.Sprintf("| where operation_Id in (%s)", strings.Join(quoted, ", ")),
		"| project timestamp, id, operation_Id, operation_ParentId, name, duration, success, customDimensions",
		"| order by timestamp asc",
	}, "\n")
}

// quoteLiteral renders a string literal for the query language, escaping
// backslashes and double quotes.
func quoteLiteral(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
