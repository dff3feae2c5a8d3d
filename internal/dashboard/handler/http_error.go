package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cargoline/tracedash/internal/tracestore"
	"go.uber.org/zap"
)

// HttpError writes a JSON error body with the given status.
func HttpError(w http.ResponseWriter, message string, status int, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorMessage{Message: message}); err != nil {
		logger.Error("Error encountered when encoding error response", zap.Error(err))
	}
}

// serviceError maps trace store failures onto the REST surface: missing
// session → 401 so the UI can present a sign-in affordance, backend query
// failures → 502 carrying the backend's message verbatim.
func serviceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var authErr *tracestore.AuthenticationError
	if errors.As(err, &authErr) {
		HttpError(w, "authentication required", http.StatusUnauthorized, logger)
		return
	}
	var queryErr *tracestore.QueryError
	if errors.As(err, &queryErr) {
		HttpError(w, queryErr.Message, http.StatusBadGateway, logger)
		return
	}
	HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
}
