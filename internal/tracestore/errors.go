package tracestore

import "fmt"

// AuthenticationError indicates that no usable session exists: either no
// credentials were configured or the token endpoint refused to mint a token.
// Callers surface this to drive re-authentication; it is not retried here.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause == nil {
		return "trace store authentication failed: no session"
	}
	return fmt.Sprintf("trace store authentication failed: %v", e.Cause)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// QueryError indicates a non-success response from the trace store. Message
// carries the backend's error text verbatim so the UI can render it as-is.
type QueryError struct {
	StatusCode int
	Message    string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("trace store query failed with status %d: %s", e.StatusCode, e.Message)
}
