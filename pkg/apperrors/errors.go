// Package apperrors holds the sentinel errors shared by the engine, its stores and
// the outer surfaces, and the mapping of caller errors to client-facing codes.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidQuestion     = errors.New("question text is required")
	ErrMissingScope        = errors.New("a file or project scope is required")
	ErrMalformedPath       = errors.New("malformed row data path")
	ErrUnsafeLiteral       = errors.New("literal rejected by injection guard")
	ErrPushdownUnavailable = errors.New("push-down row store not configured")
)

// Kind describes how a caller error is reported to clients.
type Kind struct {
	Code    string
	Status  int
	Message string
}

// Internal is reported for every error that is not the caller's fault.
var Internal = Kind{Code: "internal_error", Status: http.StatusInternalServerError, Message: "internal error"}

// Order matters: the first sentinel found in the chain wins.
var callerErrors = []struct {
	err  error
	kind Kind
}{
	{ErrInvalidQuestion, Kind{"missing_question", http.StatusBadRequest, "question cannot be empty"}},
	{ErrMissingScope, Kind{"missing_scope", http.StatusBadRequest, "a file or project id is required"}},
	{ErrNotFound, Kind{"not_found", http.StatusNotFound, "file or project not found"}},
}

// Classify reports whether err was caused by caller input and, if so, how to report it.
// Server failures return Internal and false.
func Classify(err error) (Kind, bool) {
	if err == nil {
		return Internal, false
	}
	for _, c := range callerErrors {
		if errors.Is(err, c.err) {
			return c.kind, true
		}
	}
	return Internal, false
}
