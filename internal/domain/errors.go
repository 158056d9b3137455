package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote operations
var (
	// ErrServerOffline indicates the photo server could not be reached
	ErrServerOffline = errors.New("photo server is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("api key is invalid")

	// ErrUnexpectedStatus indicates a non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

// RequestError describes a failed remote request. Kind is one of the
// sentinels above; Err is the underlying cause, if any.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Kind       error
	Err        error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
		if e.Body != "" {
			msg = fmt.Sprintf("%s: %s", msg, e.Body)
		}
		return msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Kind != nil {
		return fmt.Sprintf("%s: %v", msg, e.Kind)
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
