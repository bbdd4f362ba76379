// Package insights answers free-text questions over uploaded tabular files.
//
// A question is classified into an intent, its target column(s), filter and grouping
// are resolved against the file's columns, and an aggregation plan is executed by a
// push-down strategy against the row store with an in-memory fallback. Project-scoped
// questions are answered per file and merged.
package insights

// Config holds the engine tunables. It is passed to the engine at construction;
// the engine never reads the environment.
type Config struct {
	// RowLimit caps rows materialized by the in-memory strategy.
	RowLimit int
	// ProfileSampleRows is the sample size used to build a FileProfile.
	ProfileSampleRows int
	// ResolverSampleRows is the sample size for ad hoc column classification.
	ResolverSampleRows int
	// InferenceSampleRows is the sample size for value-driven inference.
	InferenceSampleRows int
	// InferenceMaxColumns caps the columns value-driven inference inspects.
	InferenceMaxColumns int
	// NumericThreshold is the minimum share of numeric non-blank values for a numeric column.
	NumericThreshold float64
	// CategoricalThreshold is the maximum share of numeric non-blank values for a categorical column.
	CategoricalThreshold float64
	DefaultTopN          int
	MaxTopN              int
	FetchBatchSize       int
	// FileConcurrency bounds how many files of a project are answered at once. 1 answers
	// them one after another on the calling goroutine.
	FileConcurrency int
	// RowDataPath is the JSON path prefix under which stored rows keep their cells.
	RowDataPath []string
}

const (
	defaultRowLimit      = 25000
	minRowLimit          = 1000
	defaultProfileSample = 800
	defaultResolverRows  = 400
	defaultInferenceRows = 500
	defaultInferenceCols = 50
	defaultNumericShare  = 0.6
	defaultCategorical   = 0.35
	defaultTopN          = 5
	defaultMaxTopN       = 20
	defaultFetchBatch    = 1000
	defaultFileWorkers   = 1
)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{}.Normalize()
}

// Normalize fills zero values with defaults and enforces the row limit minimum.
func (c Config) Normalize() Config {
	if c.RowLimit <= 0 {
		c.RowLimit = defaultRowLimit
	}
	if c.RowLimit < minRowLimit {
		c.RowLimit = minRowLimit
	}
	if c.ProfileSampleRows <= 0 {
		c.ProfileSampleRows = defaultProfileSample
	}
	if c.ResolverSampleRows <= 0 {
		c.ResolverSampleRows = defaultResolverRows
	}
	if c.InferenceSampleRows <= 0 {
		c.InferenceSampleRows = defaultInferenceRows
	}
	if c.InferenceMaxColumns <= 0 {
		c.InferenceMaxColumns = defaultInferenceCols
	}
	if c.NumericThreshold <= 0 {
		c.NumericThreshold = defaultNumericShare
	}
	if c.CategoricalThreshold <= 0 {
		c.CategoricalThreshold = defaultCategorical
	}
	if c.MaxTopN <= 0 {
		c.MaxTopN = defaultMaxTopN
	}
	if c.DefaultTopN <= 0 {
		c.DefaultTopN = defaultTopN
	}
	if c.DefaultTopN > c.MaxTopN {
		c.DefaultTopN = c.MaxTopN
	}
	if c.FetchBatchSize <= 0 {
		c.FetchBatchSize = defaultFetchBatch
	}
	if c.FileConcurrency <= 0 {
		c.FileConcurrency = defaultFileWorkers
	}
	return c
}
