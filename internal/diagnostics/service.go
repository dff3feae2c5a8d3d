package diagnostics

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cargoline/tracedash/internal/diagnostics/model"
	"github.com/cargoline/tracedash/internal/tracestore"
	"go.uber.org/zap"
)

// DiagnosticsService explains degraded-data conditions. It distinguishes
// "no data at all" from "data present but under unexpected property naming".
type DiagnosticsService interface {
	// Run executes the four exploratory probes. Each probe's failure is
	// isolated: a failing probe yields a zero/empty result for that probe
	// only and never aborts the others, so Run itself cannot fail.
	Run(ctx context.Context, hours int) model.Report
}

type DiagnosticsEngine struct {
	client tracestore.QueryClient
	logger *zap.Logger
}

func NewDiagnosticsEngine(client tracestore.QueryClient, logger *zap.Logger) *DiagnosticsEngine {
	return &DiagnosticsEngine{
		client: client,
		logger: logger,
	}
}

func (de *DiagnosticsEngine) Run(ctx context.Context, hours int) model.Report {
	report := model.Report{
		TotalDependencies:      de.countProbe(ctx, "dependency count", dependencyCountQuery(hours)),
		DependenciesWithConvID: de.countProbe(ctx, "conversation id count", dependencyWithConvIDCountQuery(hours)),
	}
	report.HasDependencies = report.TotalDependencies > 0
	report.HasTraces = de.countProbe(ctx, "trace count", traceCountQuery(hours)) > 0
	report.SamplePropertyKeys = de.samplePropertyKeysProbe(ctx, hours)
	return report
}

func (de *DiagnosticsEngine) countProbe(ctx context.Context, probe string, query string) int {
	res, err := de.client.Query(ctx, query)
	if err != nil {
		de.logger.Warn("Diagnostics probe failed", zap.String("probe", probe), zap.Error(err))
		return 0
	}
	table := res.PrimaryTable()
	if table == nil || len(table.Rows) == 0 || len(table.Rows[0]) == 0 {
		return 0
	}
	if count, ok := table.Rows[0][0].(float64); ok {
		return int(count)
	}
	return 0
}

// samplePropertyKeysProbe fetches one dependency row and reports the sorted
// key set of its custom dimensions, so that schema drift is visible even
// when every correlation query comes back empty.
func (de *DiagnosticsEngine) samplePropertyKeysProbe(ctx context.Context, hours int) []string {
	res, err := de.client.Query(ctx, sampleDependencyQuery(hours))
	if err != nil {
		de.logger.Warn("Diagnostics probe failed", zap.String("probe", "sample property keys"), zap.Error(err))
		return []string{}
	}
	table := res.PrimaryTable()
	if table == nil || len(table.Rows) == 0 || len(table.Rows[0]) == 0 {
		return []string{}
	}
	raw, ok := table.Rows[0][0].(string)
	if !ok {
		return []string{}
	}
	var dimensions map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &dimensions); err != nil {
		de.logger.Warn("Diagnostics sample row has malformed custom dimensions", zap.Error(err))
		return []string{}
	}
	keys := make([]string, 0, len(dimensions))
	for key := range dimensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
