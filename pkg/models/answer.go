package models

// ColumnMatch is a column and its relevance score against a question.
type ColumnMatch struct {
	Column string  `json:"column" yaml:"column"`
	Score  float64 `json:"score" yaml:"score"`
}

// Filter is a column = value restriction extracted from a question.
type Filter struct {
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
}

// AnswerItem is one ranked entry of a top, group-by or compare answer.
type AnswerItem struct {
	Value   string   `json:"value" yaml:"value"`
	Count   float64  `json:"count" yaml:"count"`
	Compare *float64 `json:"compare,omitempty" yaml:"compare,omitempty"`

	// Weight is the number of numeric values behind Count for grouped averages.
	// It lets multi-file merges weight averages instead of averaging averages.
	Weight int64 `json:"-" yaml:"-"`
}

// AnswerResult is the response to a question: a sentence plus a chartable payload.
type AnswerResult struct {
	Answer        string          `json:"answer" yaml:"answer"`
	Intent        Intent          `json:"intent" yaml:"intent"`
	Column        string          `json:"column,omitempty" yaml:"column,omitempty"`
	CompareColumn string          `json:"compareColumn,omitempty" yaml:"compareColumn,omitempty"`
	GroupBy       string          `json:"groupBy,omitempty" yaml:"groupBy,omitempty"`
	Items         []AnswerItem    `json:"items,omitempty" yaml:"items,omitempty"`
	Value         *float64        `json:"value,omitempty" yaml:"value,omitempty"`
	Columns       []string        `json:"columns,omitempty" yaml:"columns,omitempty"`
	Filter        *FilterValue    `json:"filter,omitempty" yaml:"filter,omitempty"`
	Profile       *ProfileSummary `json:"profile,omitempty" yaml:"profile,omitempty"`
	MatchedFiles  int             `json:"matchedFiles,omitempty" yaml:"matchedFiles,omitempty"`
	TotalFiles    int             `json:"totalFiles,omitempty" yaml:"totalFiles,omitempty"`
	Strategy      string          `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// FilterValue is the filter as exposed in answers.
type FilterValue struct {
	Column string `json:"column,omitempty" yaml:"column,omitempty"`
	Value  string `json:"value" yaml:"value"`
}
