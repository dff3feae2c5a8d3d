package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cargoline/tracedash/internal/config"
	"github.com/cargoline/tracedash/internal/diagnostics"
	"github.com/cargoline/tracedash/internal/metrics"
	"go.uber.org/zap"
)

// DiagnosticsHandler creates a handler running the exploratory probes on
// demand. The probes never fail as a group, so this always returns 200.
// @Summary Run trace store diagnostics probes.
// @Tags diagnostics
// @Produce json
// @Param hours query int false "Lookback window in hours (1-168)"
// @Success 200 {object} DiagnosticsReportDTO "Probe results"
// @Router /api/diagnostics [get]
func DiagnosticsHandler(
	ctx context.Context,
	ds diagnostics.DiagnosticsService,
	cfg *config.Config,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours := cfg.ClampHours(queryInt(r, "hours"))
		metrics.DiagnosticsRuns.Inc()
		report := ds.Run(ctx, hours)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toDiagnosticsReportDTO(report)); err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
		}
	}
}
