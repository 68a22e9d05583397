package api

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteCallFailed matches every failure of a remote publish call
	ErrRemoteCallFailed = errors.New("remote call failed")

	// ErrNotAuthenticated indicates no access token or session secret is configured
	ErrNotAuthenticated = errors.New("not authenticated: set PUBCTL_ACCESS_TOKEN or PUBCTL_SESSION_SECRET")

	// ErrMissingBaseURL indicates the client was built without an API URL
	ErrMissingBaseURL = errors.New("api url is required")
)

// RemoteError describes a failed call to the publish API. It matches
// ErrRemoteCallFailed with errors.Is and unwraps to the transport error, if any.
type RemoteError struct {
	// Operation is the remote operation, e.g. "publish/history"
	Operation string

	// StatusCode is the HTTP status, zero when the request never completed
	StatusCode int

	// Code is the server-side error code, if the server returned one
	Code string

	// Message is the server-side or transport message
	Message string

	// Err is the underlying transport or decoding error
	Err error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Operation, ErrRemoteCallFailed)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports ErrRemoteCallFailed as a match.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

// Unwrap returns the underlying error for errors.Is and errors.As support
func (e *RemoteError) Unwrap() error {
	return e.Err
}
