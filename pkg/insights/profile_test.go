package insights

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func TestClassifyColumns(t *testing.T) {
	columns := []string{"Service", "Revenue", "Month", "Code", "Mixed", "Empty"}
	rows := []models.Row{
		{"Service": "Voice", "Revenue": "10", "Month": "2024-01-01", "Code": "262", "Mixed": "a", "Empty": ""},
		{"Service": "SMS", "Revenue": "1,200.5", "Month": "2024-02-01", "Code": "208", "Mixed": "1", "Empty": "n/a"},
		{"Service": "Data", "Revenue": "n/a", "Month": "2024-03-01", "Code": "DE", "Mixed": "2"},
		{"Service": "Voice", "Revenue": "30", "Month": "-", "Code": "214", "Mixed": "b"},
	}

	kinds := ClassifyColumns(columns, rows, 0.6, 0.35)

	// Code is 3/4 numeric; Mixed is 2/4, neither numeric nor categorical
	assert.Equal(t, []string{"Revenue", "Code"}, kinds.Numeric)
	assert.Equal(t, []string{"Month"}, kinds.Date)
	assert.Equal(t, []string{"Service"}, kinds.Categorical)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"Service", "Revenue"})
	assert.Equal(t, a, Fingerprint([]string{"Service", "Revenue"}))
	assert.NotEqual(t, a, Fingerprint([]string{"Revenue", "Service"}))
	assert.NotEqual(t, Fingerprint([]string{"ab", "c"}), Fingerprint([]string{"a", "bc"}))
}

func TestBuildProfile(t *testing.T) {
	id := uuid.New()
	columns := []string{"Service", "Revenue"}
	rows := []models.Row{
		{"Service": "A", "Revenue": "10"},
		{"Service": "B", "Revenue": "20"},
	}

	p := BuildProfile(id, columns, rows, 1000, DefaultConfig())

	assert.Equal(t, id, p.FileID)
	assert.Equal(t, int64(1000), p.RowCount)
	assert.Equal(t, 2, p.ColumnCount)
	assert.Equal(t, 2, p.SampledRows)
	assert.Equal(t, []string{"Revenue"}, p.NumericColumns)
	assert.Equal(t, []string{"Service"}, p.CategoricalColumns)
	assert.Equal(t, []string{}, p.DateColumns)
	assert.Equal(t, Fingerprint(columns), p.Fingerprint)
}

func TestFallbackColumn(t *testing.T) {
	kinds := ColumnKinds{Numeric: []string{"Revenue", "Cost"}, Categorical: []string{"Service"}}

	assert.Equal(t, "Revenue", FallbackColumn(models.IntentAvg, kinds, "Service"))
	assert.Equal(t, "Revenue", FallbackColumn(models.IntentCompare, kinds, "Service"))
	assert.Equal(t, "Service", FallbackColumn(models.IntentTop, kinds, "Revenue"))
	assert.Equal(t, "First", FallbackColumn(models.IntentCount, kinds, " First "))
	assert.Equal(t, "", FallbackColumn(models.IntentSum, ColumnKinds{}, "Service"))
	assert.Equal(t, "Cost", FallbackColumn(models.IntentMax, kinds.Without("Revenue"), ""))
}
