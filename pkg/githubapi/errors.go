package githubapi

import "fmt"

// ValidationError reports a request that failed local validation.
// It is returned before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

// UpstreamError reports a non-2xx response from the GitHub API.
// StatusCode and Message come from the upstream response and are
// surfaced verbatim, never downgraded to a transport failure.
type UpstreamError struct {
	StatusCode int
	Message    string
	DocURL     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github api error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError reports a request that could not complete at all
// (DNS failure, connection refused, timeout).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github request failed (%s): %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
