package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func TestRuleOrder(t *testing.T) {
	expected := []models.Intent{
		models.IntentSummary,
		models.IntentTypes,
		models.IntentColumns,
		models.IntentRows,
		models.IntentTop,
		models.IntentCompare,
		models.IntentDistinct,
		models.IntentAvg,
		models.IntentSum,
		models.IntentMax,
		models.IntentMin,
		models.IntentCount,
	}
	assert.Equal(t, expected, RuleOrder())
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		question string
		expected models.Intent
	}{
		{"Give me an overview of this file", models.IntentSummary},
		{"Summarize the data", models.IntentSummary},
		{"What are the data types?", models.IntentTypes},
		{"show the schema", models.IntentTypes},
		{"Which columns are there?", models.IntentColumns},
		{"how many rows are in this file?", models.IntentRows},
		{"total number of records", models.IntentRows},
		{"top 5 services", models.IntentTop},
		{"most common country", models.IntentTop},
		{"compare Revenue vs Cost by Country", models.IntentCompare},
		{"revenue versus cost", models.IntentCompare},
		{"how many unique operators", models.IntentDistinct},
		{"Average of Revenue", models.IntentAvg},
		{"mean duration", models.IntentAvg},
		{"total revenue", models.IntentSum},
		{"sum of charges", models.IntentSum},
		{"highest revenue", models.IntentMax},
		{"lowest cost", models.IntentMin},
		{"how many operators", models.IntentCount},
		{"number of countries", models.IntentCount},
		{"what is the weather in Paris", models.IntentCount},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyIntent(tt.question))
		})
	}
}

func TestClassifyIntent_OrderIsTieBreak(t *testing.T) {
	// "top" is checked before "average"
	assert.Equal(t, models.IntentTop, ClassifyIntent("top 3 services by average revenue"))
	// "columns" is checked before "how many"
	assert.Equal(t, models.IntentColumns, ClassifyIntent("how many columns are there"))
	// "distinct" is checked before "count"
	assert.Equal(t, models.IntentDistinct, ClassifyIntent("count distinct countries"))
	// "sum/total" is checked before "max"
	assert.Equal(t, models.IntentSum, ClassifyIntent("total of the highest charges"))
}

func TestParseTopN(t *testing.T) {
	tests := []struct {
		question string
		expected int
	}{
		{"top 0 services", 1},
		{"top 37 services", 20},
		{"top 5 services", 5},
		{"top-3 countries", 3},
		{"top services", 5},
		{"most common services", 5},
		{"top 99999999999999999999999 services", 20},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseTopN(tt.question, 5, 20))
		})
	}
}

func TestClassify_UsesConfiguredBounds(t *testing.T) {
	cfg := Config{DefaultTopN: 3, MaxTopN: 10}.Normalize()

	got := Classify("top 50 operators", cfg)
	assert.Equal(t, models.IntentTop, got.Intent)
	assert.Equal(t, 10, got.TopN)

	got = Classify("most common operator", cfg)
	assert.Equal(t, 3, got.TopN)
}
