package diagnostics

import (
	"fmt"
	"strings"

	"github.com/cargoline/tracedash/internal/conversation"
)

func dependencyCountQuery(hours int) string {
	return strings.Join([]string{
		"dependencies",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		"| count",
	}, "\n")
}

func dependencyWithConvIDCountQuery(hours int) string {
	return strings.Join([]string{
		"dependencies",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		fmt.Sprintf("| extend convId = %s", conversation.ConversationIDExpression()),
		"| where isnotempty(convId)",
		"| count",
	}, "\n")
}

func traceCountQuery(hours int) string {
	return strings.Join([]string{
		"traces",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		"| count",
	}, "\n")
}

func sampleDependencyQuery(hours int) string {
	return strings.Join([]string{
		"dependencies",
		fmt.Sprintf("| where timestamp > ago(%dh)", hours),
		"| take 1",
		"| project customDimensions",
	}, "\n")
}
