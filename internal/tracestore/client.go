package tracestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cargoline/tracedash/internal/metrics"
	"github.com/cargoline/tracedash/internal/tracestore/model"
	"go.uber.org/zap"
)

// QueryClient executes analytical queries against the trace store and
// returns tabular results.
type QueryClient interface {
	// Query runs one analytical query. It returns *AuthenticationError when
	// no token can be acquired and *QueryError on a non-success response.
	Query(ctx context.Context, queryText string) (*model.QueryResult, error)
}

// HTTPQueryClient talks to the trace store's REST query endpoint. A bearer
// token is acquired (and silently refreshed) before each query.
type HTTPQueryClient struct {
	apiURL     string
	appID      string
	tokens     TokenProvider
	httpClient *http.Client
	logger     *zap.Logger
}

func NewHTTPQueryClient(
	apiURL string,
	appID string,
	tokens TokenProvider,
	logger *zap.Logger,
) *HTTPQueryClient {
	return &HTTPQueryClient{
		apiURL:     strings.TrimRight(apiURL, "/"),
		appID:      appID,
		tokens:     tokens,
		httpClient: http.DefaultClient,
		logger:     logger,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPQueryClient) Query(ctx context.Context, queryText string) (*model.QueryResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		metrics.TraceStoreQueries.WithLabelValues(metrics.OutcomeAuthError).Inc()
		c.logger.Warn("Failed to acquire trace store token", zap.Error(err))
		return nil, err
	}

	body, err := json.Marshal(queryRequest{Query: queryText})
	if err != nil {
		return nil, fmt.Errorf("error marshalling query request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/apps/%s/query", c.apiURL, c.appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TraceStoreQueries.WithLabelValues(metrics.OutcomeTransportError).Inc()
		return nil, fmt.Errorf("error executing trace store query: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading trace store response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		message := extractErrorMessage(resBody)
		c.logger.Error(
			"Trace store query failed",
			zap.Int("status", res.StatusCode),
			zap.String("message", message),
		)
		metrics.TraceStoreQueries.WithLabelValues(metrics.OutcomeQueryError).Inc()
		return nil, &QueryError{StatusCode: res.StatusCode, Message: message}
	}

	var result model.QueryResult
	if err := json.Unmarshal(resBody, &result); err != nil {
		return nil, fmt.Errorf("error decoding trace store response: %w", err)
	}
	metrics.TraceStoreQueries.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &result, nil
}

// extractErrorMessage pulls the backend's error text out of an error body,
// falling back to the raw body when it is not the documented shape.
func extractErrorMessage(body []byte) string {
	var errRes queryErrorResponse
	if err := json.Unmarshal(body, &errRes); err == nil && errRes.Error.Message != "" {
		return errRes.Error.Message
	}
	return strings.TrimSpace(string(body))
}
