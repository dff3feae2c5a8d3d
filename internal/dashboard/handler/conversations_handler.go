package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cargoline/tracedash/internal/config"
	"github.com/cargoline/tracedash/internal/conversation"
	"github.com/cargoline/tracedash/internal/diagnostics"
	"github.com/cargoline/tracedash/internal/metrics"
	"go.uber.org/zap"
)

// RecentConversationsHandler creates a handler listing recent conversations.
// When the window holds no conversations the diagnostics engine runs
// automatically and its report is embedded in the response, so the UI can
// distinguish "no data" from "wrong property naming".
// @Summary List recent conversations observed in dependency telemetry.
// @Tags conversations
// @Produce json
// @Param hours query int false "Lookback window in hours (1-168)"
// @Param limit query int false "Maximum number of conversations (10-1000)"
// @Success 200 {object} RecentConversationsResponseDTO "Recent conversations"
// @Failure 401 {object} ErrorMessage "No trace store session"
// @Failure 502 {object} ErrorMessage "Trace store query failed"
// @Router /api/conversations [get]
func RecentConversationsHandler(
	ctx context.Context,
	cs conversation.ConversationQueryService,
	ds diagnostics.DiagnosticsService,
	cfg *config.Config,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours := cfg.ClampHours(queryInt(r, "hours"))
		limit := cfg.ClampLimit(queryInt(r, "limit"))

		summaries, err := cs.GetRecentConversations(ctx, hours, limit)
		if err != nil {
			logger.Error("Error encountered when listing recent conversations", zap.Error(err))
			serviceError(w, err, logger)
			return
		}

		response := RecentConversationsResponseDTO{
			Conversations: toConversationSummaryDTOs(summaries),
		}
		if len(summaries) == 0 {
			metrics.DiagnosticsRuns.Inc()
			report := ds.Run(ctx, hours)
			response.Diagnostics = toDiagnosticsReportDTO(report)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
		}
	}
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
