package api

import "fmt"

// APIError is any non-2xx HTTP outcome, carrying the backend's message when
// one was parseable and the status code for callers that branch on it.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return e.Message
}

// IsAuthError reports whether the error means the session is invalid.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401
}

func genericMessage(status int) string {
	return fmt.Sprintf("API Error: %d", status)
}
