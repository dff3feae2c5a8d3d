package router

import (
	"context"
	"net/http"
	"time"

	"github.com/cargoline/tracedash/internal/config"
	"github.com/cargoline/tracedash/internal/conversation"
	"github.com/cargoline/tracedash/internal/dashboard/handler"
	"github.com/cargoline/tracedash/internal/diagnostics"
	"github.com/cargoline/tracedash/pkg/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)
import "github.com/gorilla/mux"

func CreateRouter(
	ctx context.Context,
	conversationQueryService conversation.ConversationQueryService,
	diagnosticsService diagnostics.DiagnosticsService,
	viewCache cache.ReadThroughCache[handler.ConversationView],
	cfg *config.Config,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle(
		"/api/conversations", handler.RecentConversationsHandler(
			ctx,
			conversationQueryService,
			diagnosticsService,
			cfg,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/api/conversations/{id}", handler.ConversationDetailHandler(
			ctx,
			conversationQueryService,
			viewCache,
			cfg,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/api/diagnostics", handler.DiagnosticsHandler(
			ctx,
			diagnosticsService,
			cfg,
			logger,
		),
	).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Use(requestLogging(logger))
	return r
}

// requestLogging tags each request with an id and logs its outcome timing.
func requestLogging(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info(
				"Handled request",
				zap.String("requestId", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
