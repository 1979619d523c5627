package services

import "errors"

// Access failures are reported as one of two signals, applied uniformly:
// ErrNotFound when the requester has no read access at all (the resource
// is absent, or membership is required to even know it exists), and
// ErrForbidden when the resource is readable but the specific action is
// owner-only.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("not authorized to perform this action")
	ErrUnauthorized = errors.New("invalid credentials")
)

// UpstreamError wraps a failure from the generative-language API, with a
// human-readable suggestion surfaced alongside the raw error.
type UpstreamError struct {
	Err        error
	Suggestion string
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
