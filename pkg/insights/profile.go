package insights

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// ColumnKinds is the numeric/date/categorical classification of a column set.
type ColumnKinds struct {
	Numeric     []string
	Date        []string
	Categorical []string
}

// KindsFromProfile reads the classification out of a profile.
func KindsFromProfile(p *models.FileProfile) ColumnKinds {
	if p == nil {
		return ColumnKinds{}
	}
	return ColumnKinds{
		Numeric:     p.NumericColumns,
		Date:        p.DateColumns,
		Categorical: p.CategoricalColumns,
	}
}

// Without drops the given columns from every list.
func (k ColumnKinds) Without(exclude ...string) ColumnKinds {
	return ColumnKinds{
		Numeric:     without(k.Numeric, exclude...),
		Date:        without(k.Date, exclude...),
		Categorical: without(k.Categorical, exclude...),
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
}

func isDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// ClassifyColumns classifies columns over sampled rows. A column is numeric when at
// least numericShare of its non-blank values are numbers, otherwise a date column when
// at least numericShare of them parse as dates, otherwise categorical when at most
// categoricalShare of them are numbers. Columns without non-blank values are unclassified.
func ClassifyColumns(columns []string, rows []models.Row, numericShare, categoricalShare float64) ColumnKinds {
	var kinds ColumnKinds
	for _, col := range columns {
		var filled, numeric, dates int
		for _, row := range rows {
			v, ok := cellValue(row[col])
			if !ok {
				continue
			}
			filled++
			if IsNumeric(v) {
				numeric++
			} else if isDate(v) {
				dates++
			}
		}
		if filled == 0 {
			continue
		}
		numShare := float64(numeric) / float64(filled)
		switch {
		case numShare >= numericShare:
			kinds.Numeric = append(kinds.Numeric, col)
		case float64(dates)/float64(filled) >= numericShare:
			kinds.Date = append(kinds.Date, col)
		case numShare <= categoricalShare:
			kinds.Categorical = append(kinds.Categorical, col)
		}
	}
	return kinds
}

// Fingerprint hashes an ordered column list so a profile can be tied to the columns it was built from.
func Fingerprint(columns []string) string {
	h := xxhash.New()
	for _, c := range columns {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// BuildProfile classifies a file from a row sample. rowCount is the file's total row count.
func BuildProfile(fileID uuid.UUID, columns []string, sample []models.Row, rowCount int64, cfg Config) *models.FileProfile {
	kinds := ClassifyColumns(columns, sample, cfg.NumericThreshold, cfg.CategoricalThreshold)
	return &models.FileProfile{
		FileID:             fileID,
		RowCount:           rowCount,
		ColumnCount:        len(columns),
		Columns:            append([]string(nil), columns...),
		NumericColumns:     nonNil(kinds.Numeric),
		DateColumns:        nonNil(kinds.Date),
		CategoricalColumns: nonNil(kinds.Categorical),
		SampledRows:        len(sample),
		Fingerprint:        Fingerprint(columns),
		GeneratedAt:        time.Now().UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FallbackColumn picks a column when the question names none: numeric intents take the
// first numeric column, categorical intents the first categorical column, anything else
// the first column.
func FallbackColumn(intent models.Intent, kinds ColumnKinds, firstColumn string) string {
	switch {
	case intent.IsNumeric():
		if len(kinds.Numeric) > 0 {
			return kinds.Numeric[0]
		}
		return ""
	case intent.IsCategorical():
		if len(kinds.Categorical) > 0 {
			return kinds.Categorical[0]
		}
		return ""
	}
	return strings.TrimSpace(firstColumn)
}
