package diagnostics

import (
	"context"
	"strings"
	"testing"

	"github.com/cargoline/tracedash/internal/tracestore"
	storemodel "github.com/cargoline/tracedash/internal/tracestore/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type cannedResult struct {
	marker string
	result *storemodel.QueryResult
}

// probeClient serves canned results by the first matching query marker and
// can be told to fail for queries containing failOn. Markers are checked in
// order, most specific first.
type probeClient struct {
	results []cannedResult
	failOn  string
	queries []string
}

func (p *probeClient) Query(ctx context.Context, queryText string) (*storemodel.QueryResult, error) {
	p.queries = append(p.queries, queryText)
	if p.failOn != "" && strings.Contains(queryText, p.failOn) {
		return nil, &tracestore.QueryError{StatusCode: 400, Message: "bad query"}
	}
	for _, canned := range p.results {
		if strings.Contains(queryText, canned.marker) {
			return canned.result, nil
		}
	}
	return &storemodel.QueryResult{}, nil
}

func countResult(count float64) *storemodel.QueryResult {
	return &storemodel.QueryResult{Tables: []storemodel.Table{{
		Name:    "PrimaryResult",
		Columns: []storemodel.Column{{Name: "Count", Type: "long"}},
		Rows:    [][]interface{}{{count}},
	}}}
}

func sampleResult(dimensions string) *storemodel.QueryResult {
	return &storemodel.QueryResult{Tables: []storemodel.Table{{
		Name:    "PrimaryResult",
		Columns: []storemodel.Column{{Name: "customDimensions", Type: "dynamic"}},
		Rows:    [][]interface{}{{dimensions}},
	}}}
}

func TestDiagnosticsEngine_Run(t *testing.T) {
	t.Run("Populates all probes", func(t *testing.T) {
		client := &probeClient{results: []cannedResult{
			{"isnotempty(convId)", countResult(7)},
			{"take 1", sampleResult(`{"gen_ai.thread.id":"t1","gen_ai.operation.name":"chat"}`)},
			{"traces", countResult(85)},
			{"dependencies", countResult(120)},
		}}
		report := NewDiagnosticsEngine(client, zap.NewNop()).Run(context.Background(), 24)

		assert.True(t, report.HasDependencies)
		assert.True(t, report.HasTraces)
		assert.Equal(t, 120, report.TotalDependencies)
		assert.Equal(t, 7, report.DependenciesWithConvID)
		assert.Equal(t, []string{"gen_ai.operation.name", "gen_ai.thread.id"}, report.SamplePropertyKeys)
	})

	t.Run("One failing probe does not abort the others", func(t *testing.T) {
		client := &probeClient{
			failOn: "traces",
			results: []cannedResult{
				{"isnotempty(convId)", countResult(3)},
				{"take 1", sampleResult(`{"k":"v"}`)},
				{"dependencies", countResult(3)},
			},
		}
		report := NewDiagnosticsEngine(client, zap.NewNop()).Run(context.Background(), 24)

		assert.False(t, report.HasTraces)
		assert.True(t, report.HasDependencies)
		assert.Equal(t, 3, report.TotalDependencies)
		assert.Equal(t, []string{"k"}, report.SamplePropertyKeys)
		// all four probes were attempted
		assert.Len(t, client.queries, 4)
	})

	t.Run("All probes failing still yields a report", func(t *testing.T) {
		client := &probeClient{failOn: "|"}
		report := NewDiagnosticsEngine(client, zap.NewNop()).Run(context.Background(), 24)

		assert.False(t, report.HasDependencies)
		assert.False(t, report.HasTraces)
		assert.Zero(t, report.TotalDependencies)
		assert.Zero(t, report.DependenciesWithConvID)
		assert.Empty(t, report.SamplePropertyKeys)
		assert.Len(t, client.queries, 4)
	})

	t.Run("Malformed sample dimensions degrade to empty key set", func(t *testing.T) {
		client := &probeClient{results: []cannedResult{
			{"take 1", sampleResult(`{broken`)},
		}}
		report := NewDiagnosticsEngine(client, zap.NewNop()).Run(context.Background(), 24)
		assert.Empty(t, report.SamplePropertyKeys)
	})
}
