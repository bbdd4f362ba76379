package models

import (
	"time"

	"github.com/google/uuid"
)

// FileInfo identifies an uploaded tabular file.
type FileInfo struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	ProjectID uuid.UUID `json:"projectId" yaml:"projectId"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Row is a single record of a file: column name to raw cell text.
// A missing key and a blank-like value are equivalent.
type Row map[string]string

// FileProfile classifies the columns of a file.
// It is the only piece of engine state that outlives a request.
type FileProfile struct {
	FileID             uuid.UUID `json:"fileId" yaml:"fileId"`
	RowCount           int64     `json:"rowCount" yaml:"rowCount"`
	ColumnCount        int       `json:"columnCount" yaml:"columnCount"`
	Columns            []string  `json:"columns" yaml:"columns"`
	NumericColumns     []string  `json:"numericColumns" yaml:"numericColumns"`
	DateColumns        []string  `json:"dateColumns" yaml:"dateColumns"`
	CategoricalColumns []string  `json:"categoricalColumns" yaml:"categoricalColumns"`
	SampledRows        int       `json:"sampledRows" yaml:"sampledRows"`
	Fingerprint        string    `json:"fingerprint" yaml:"fingerprint"`
	GeneratedAt        time.Time `json:"generatedAt" yaml:"generatedAt"`
}

// FirstColumn returns the first profiled column, or "" when the profile has none.
func (p *FileProfile) FirstColumn() string {
	if p == nil || len(p.Columns) == 0 {
		return ""
	}
	return p.Columns[0]
}

// Summary returns the payload subset of the profile exposed in answers.
func (p *FileProfile) Summary() *ProfileSummary {
	if p == nil {
		return nil
	}
	return &ProfileSummary{
		RowCount:           p.RowCount,
		ColumnCount:        p.ColumnCount,
		NumericColumns:     append([]string(nil), p.NumericColumns...),
		DateColumns:        append([]string(nil), p.DateColumns...),
		CategoricalColumns: append([]string(nil), p.CategoricalColumns...),
	}
}

// ProfileSummary is the part of a FileProfile returned for summary and types questions.
type ProfileSummary struct {
	RowCount           int64    `json:"rowCount" yaml:"rowCount"`
	ColumnCount        int      `json:"columnCount" yaml:"columnCount"`
	NumericColumns     []string `json:"numericColumns" yaml:"numericColumns"`
	DateColumns        []string `json:"dateColumns" yaml:"dateColumns"`
	CategoricalColumns []string `json:"categoricalColumns" yaml:"categoricalColumns"`
}
