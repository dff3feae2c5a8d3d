package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cargoline/tracedash/internal/config"
	"github.com/cargoline/tracedash/internal/conversation"
	"github.com/cargoline/tracedash/internal/metrics"
	telemetrymodel "github.com/cargoline/tracedash/internal/telemetry/model"
	"github.com/cargoline/tracedash/internal/tree"
	treemodel "github.com/cargoline/tracedash/internal/tree/model"
	"github.com/cargoline/tracedash/pkg/cache"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ConversationView is the memoized unit of the detail endpoint: the
// assembled tree plus the flat deduplicated span list it was built from.
type ConversationView struct {
	Tree  *treemodel.Node
	Spans []telemetrymodel.Span
}

// ConversationDetailHandler creates a handler resolving one conversation
// into its span set and assembled tree. Views are memoized per
// (conversation, window); a changed window is a new key, which resets the
// derived data.
// @Summary Get the span set and hierarchy of one conversation.
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation identifier"
// @Param hours query int false "Lookback window in hours (1-168)"
// @Success 200 {object} ConversationDetailResponseDTO "Tree and spans"
// @Failure 404 {object} ErrorMessage "Conversation not found"
// @Failure 401 {object} ErrorMessage "No trace store session"
// @Failure 502 {object} ErrorMessage "Trace store query failed"
// @Router /api/conversations/{id} [get]
func ConversationDetailHandler(
	ctx context.Context,
	cs conversation.ConversationQueryService,
	views cache.ReadThroughCache[ConversationView],
	cfg *config.Config,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conversationID := mux.Vars(r)["id"]
		hours := cfg.ClampHours(queryInt(r, "hours"))
		cacheKey := fmt.Sprintf("%s|%dh", conversationID, hours)

		view, err := views.Get(cacheKey)
		if err == nil {
			metrics.TreeCacheHits.Inc()
			writeConversationDetail(w, view, logger)
			return
		}
		if !errors.Is(err, cache.ErrKeyNotFound) {
			logger.Warn("Error encountered when reading view cache", zap.Error(err))
		}
		metrics.TreeCacheMisses.Inc()

		spans, err := cs.GetConversationSpans(ctx, conversationID, hours)
		if err != nil {
			logger.Error(
				"Error encountered when fetching conversation spans",
				zap.String("conversationId", conversationID),
				zap.Error(err),
			)
			serviceError(w, err, logger)
			return
		}
		if len(spans) == 0 {
			HttpError(
				w,
				fmt.Sprintf("conversation %s not found in the last %dh", conversationID, hours),
				http.StatusNotFound,
				logger,
			)
			return
		}

		metrics.TreeBuilds.Inc()
		view = ConversationView{
			Tree:  tree.BuildTree(conversationID, spans),
			Spans: spans,
		}
		if err := views.Put(cacheKey, view); err != nil {
			logger.Warn("Error encountered when caching view", zap.Error(err))
		}
		writeConversationDetail(w, view, logger)
	}
}

func writeConversationDetail(w http.ResponseWriter, view ConversationView, logger *zap.Logger) {
	response := ConversationDetailResponseDTO{
		Tree:  toTreeNodeDTO(view.Tree),
		Spans: toSpanDTOs(view.Spans),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Error encountered when encoding response", zap.Error(err))
		HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
	}
}
