package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/cargoline/tracedash/internal/config"
	"github.com/cargoline/tracedash/internal/conversation"
	"github.com/cargoline/tracedash/internal/dashboard/handler"
	"github.com/cargoline/tracedash/internal/dashboard/router"
	"github.com/cargoline/tracedash/internal/diagnostics"
	"github.com/cargoline/tracedash/internal/telemetry"
	"github.com/cargoline/tracedash/internal/tracestore"
	"github.com/cargoline/tracedash/pkg/cache"
	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// @title Agent Trace Dashboard API
// @version 1.0
// @description Correlates flat telemetry spans into the conversation/run/step/tool hierarchy used for debugging agent behavior.

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("TRACEDASH_CONFIG"))
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	tokens := buildTokenProvider(cfg, logger)
	queryClient := tracestore.NewHTTPQueryClient(
		cfg.TraceStore.APIURL,
		cfg.TraceStore.AppID,
		tokens,
		logger,
	)

	parser := telemetry.NewParser(logger)
	conversationService := conversation.NewConversationService(queryClient, parser, logger)
	diagnosticsEngine := diagnostics.NewDiagnosticsEngine(queryClient, logger)

	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 12,
		MaxCost:     1 << 10,
		BufferItems: 64,
	})
	if err != nil {
		logger.Fatal("Failed to create view cache", zap.Error(err))
	}
	viewCache := cache.NewReadThroughCacheImpl[handler.ConversationView](
		ristrettoCache,
		cfg.Dashboard.CacheTTL,
		logger,
	)

	r := router.CreateRouter(
		context.Background(),
		conversationService,
		diagnosticsEngine,
		viewCache,
		cfg,
		logger,
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting dashboard server", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal("Failed to serve", zap.Error(err))
	}
}

// buildTokenProvider prefers the client-credentials flow; a pre-issued token
// in the environment is the local-development fallback. With neither
// configured, queries fail with an authentication error at call time.
func buildTokenProvider(cfg *config.Config, logger *zap.Logger) tracestore.TokenProvider {
	if cfg.TraceStore.ClientID != "" && cfg.TraceStore.ClientSecret != "" {
		provider, err := tracestore.NewClientCredentialsTokenProvider(
			cfg.TraceStore.ResolvedTokenURL(),
			cfg.TraceStore.ClientID,
			cfg.TraceStore.ClientSecret,
			[]string{cfg.TraceStore.Scope},
		)
		if err != nil {
			logger.Fatal("Failed to configure client credentials", zap.Error(err))
		}
		return provider
	}
	if token := os.Getenv("TRACEDASH_ACCESS_TOKEN"); token != "" {
		logger.Warn("Using static access token from environment")
		return &tracestore.StaticTokenProvider{AccessToken: token}
	}
	logger.Warn("No trace store credentials configured; queries will fail with an authentication error")
	return &tracestore.StaticTokenProvider{}
}
