// Package models contains domain types for the tabular question answering engine.
package models

import (
	"strings"

	"github.com/google/uuid"
)

// Intent is the classified kind of question.
type Intent string

// Intent constants. The order of the classifier rules lives in pkg/insights, not here.
const (
	IntentRows     Intent = "rows"
	IntentColumns  Intent = "columns"
	IntentCount    Intent = "count"
	IntentDistinct Intent = "distinct"
	IntentSum      Intent = "sum"
	IntentAvg      Intent = "avg"
	IntentMin      Intent = "min"
	IntentMax      Intent = "max"
	IntentTop      Intent = "top"
	IntentCompare  Intent = "compare"
	IntentSummary  Intent = "summary"
	IntentTypes    Intent = "types"

	// IntentUnknown is only ever used in answers, never produced by the classifier.
	IntentUnknown Intent = "unknown"
)

var orderedIntents = []Intent{
	IntentRows, IntentColumns, IntentCount, IntentDistinct,
	IntentSum, IntentAvg, IntentMin, IntentMax,
	IntentTop, IntentCompare, IntentSummary, IntentTypes,
}

var knownIntents = func() map[Intent]bool {
	m := make(map[Intent]bool, len(orderedIntents))
	for _, in := range orderedIntents {
		m[in] = true
	}
	return m
}()

// Intents returns every intent a caller may force, as strings.
func Intents() []string {
	out := make([]string, len(orderedIntents))
	for i, in := range orderedIntents {
		out[i] = string(in)
	}
	return out
}

// ParseIntent converts a caller-supplied intent override. Returns false for unknown values.
func ParseIntent(s string) (Intent, bool) {
	in := Intent(strings.ToLower(strings.TrimSpace(s)))
	return in, knownIntents[in]
}

// IsNumeric reports whether the intent aggregates a numeric measure.
func (i Intent) IsNumeric() bool {
	switch i {
	case IntentSum, IntentAvg, IntentMin, IntentMax, IntentCompare:
		return true
	}
	return false
}

// IsCategorical reports whether the intent works on a categorical column.
func (i Intent) IsCategorical() bool {
	return i == IntentTop || i == IntentDistinct
}

// Scope selects the files a question is asked against.
// Exactly one of FileID or ProjectID must be set.
type Scope struct {
	FileID    uuid.UUID `json:"fileId,omitempty"`
	ProjectID uuid.UUID `json:"projectId,omitempty"`
}

// IsFile returns true when the scope targets a single file.
func (s Scope) IsFile() bool {
	return s.FileID != uuid.Nil
}

// IsProject returns true when the scope targets every file in a project.
func (s Scope) IsProject() bool {
	return s.FileID == uuid.Nil && s.ProjectID != uuid.Nil
}

// Question is a free-text question plus its scope.
type Question struct {
	Text  string `json:"question"`
	Scope Scope  `json:"scope"`

	// ForcedIntent bypasses the classifier when non-empty.
	ForcedIntent Intent `json:"intent,omitempty"`
}
