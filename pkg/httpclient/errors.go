package httpclient

import (
	"fmt"
	"net/http"
)

// ServiceError is the only error kind produced by Client. Callers never
// see raw transport errors; the last underlying failure is kept as Cause.
type ServiceError struct {
	Service    string
	Method     string
	URL        string
	StatusCode int // 0 when the failure happened below HTTP
	Attempts   int
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s %s failed with status %d after %d attempt(s): %v",
			e.Service, e.Method, e.URL, e.StatusCode, e.Attempts, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s failed after %d attempt(s): %v",
		e.Service, e.Method, e.URL, e.Attempts, e.Cause)
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsAuthFailure reports whether the remote rejected our credentials.
func (e *ServiceError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
