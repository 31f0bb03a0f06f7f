package pipeline

import (
	"context"
	"errors"
	"net/http"

	"github.com/ppiankov/urlsum/internal/llm"
	"github.com/ppiankov/urlsum/internal/model"
)

// ErrorClass describes how a pipeline error is reported at the edges
type ErrorClass struct {
	Code     string // Stable machine-readable code for JSON bodies
	Status   int    // HTTP status
	ExitCode int    // CLI exit status
}

var classes = []struct {
	err   error
	class ErrorClass
}{
	{model.ErrUnknownKind, ErrorClass{"unknown_kind", http.StatusBadRequest, 2}},
	{ErrMalformedURL, ErrorClass{"malformed_url", http.StatusBadRequest, 2}},
	{ErrNotFound, ErrorClass{"not_found", http.StatusNotFound, 3}},
	{ErrUnauthorized, ErrorClass{"unauthorized", http.StatusUnauthorized, 4}},
	// Fetch timeouts are wrapped in ErrNetwork too
	{context.DeadlineExceeded, ErrorClass{"timeout", http.StatusGatewayTimeout, 5}},
	{ErrNetwork, ErrorClass{"network", http.StatusBadGateway, 5}},
	{llm.ErrModelUnavailable, ErrorClass{"model_unavailable", http.StatusServiceUnavailable, 6}},
	{llm.ErrInputTooLong, ErrorClass{"input_too_long", http.StatusRequestEntityTooLarge, 7}},
	{llm.ErrEmptyInput, ErrorClass{"empty_input", http.StatusUnprocessableEntity, 8}},
	{llm.ErrNoSummary, ErrorClass{"no_summary", http.StatusBadGateway, 8}},
}

var internalClass = ErrorClass{"internal", http.StatusInternalServerError, 1}

// Classify maps an error onto its code, HTTP status and exit code.
// The first matching entry wins.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClass{Code: "", Status: http.StatusOK, ExitCode: 0}
	}
	for _, c := range classes {
		if errors.Is(err, c.err) {
			return c.class
		}
	}
	return internalClass
}
