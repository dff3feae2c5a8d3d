package telemetry

// The telemetry attribute schema drifted over time; each list below is
// ordered newest spelling first and consumed via CoalesceKeys.

// ConversationIDKeys are the known spellings under which instrumentation
// recorded the conversation identifier on dependency spans.
var ConversationIDKeys = []string{
	"gen_ai.conversation.id",
	"gen_ai.thread.id",
	"conversation_id",
}

const (
	OperationNameKey  = "gen_ai.operation.name"
	RequestModelKey   = "gen_ai.request.model"
	AgentNameKey      = "gen_ai.agent.name"
	ToolNameKey       = "gen_ai.tool.name"
	ToolArgumentsKey  = "gen_ai.tool.call.arguments"
	ToolResultKey     = "gen_ai.tool.call.result"
	InputMessagesKey  = "gen_ai.input.messages"
	OutputMessagesKey = "gen_ai.output.messages"
	InputTokensKey    = "gen_ai.usage.input_tokens"
	OutputTokensKey   = "gen_ai.usage.output_tokens"
)

// CoalesceKeys returns the value of the first key with a non-empty value,
// or the empty string when none match.
func CoalesceKeys(attributes map[string]string, keys ...string) string {
	for _, key := range keys {
		if value, ok := attributes[key]; ok && value != "" {
			return value
		}
	}
	return ""
}
