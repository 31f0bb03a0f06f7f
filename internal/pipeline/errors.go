package pipeline

import "errors"

// Fetch errors. Callers classify with errors.Is.
var (
	ErrMalformedURL = errors.New("malformed source URL")
	ErrNotFound     = errors.New("source not found")
	ErrUnauthorized = errors.New("missing or rejected bearer token")
	ErrNetwork      = errors.New("upstream request failed")
)
