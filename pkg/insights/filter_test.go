package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func TestExtractFilter(t *testing.T) {
	columns := []string{"Country", "Country Code", "Status", "Revenue"}

	tests := []struct {
		name     string
		question string
		expected *models.Filter
	}{
		{
			name:     "equals sign with stop comma",
			question: "count Revenue where Country Code = DE-1, please",
			expected: &models.Filter{Column: "Country Code", Value: "DE-1"},
		},
		{
			name:     "is with quoted value",
			question: `total revenue where status is "pending review"`,
			expected: &models.Filter{Column: "Status", Value: "pending review"},
		},
		{
			name:     "colon",
			question: "revenue for country: France",
			expected: &models.Filter{Column: "Country", Value: "France"},
		},
		{
			name:     "equals word stops at and",
			question: "rows where country equals Spain and revenue above 10",
			expected: &models.Filter{Column: "Country", Value: "Spain"},
		},
		{
			name:     "question mark stripped",
			question: "how many rows where Status is open?",
			expected: &models.Filter{Column: "Status", Value: "open"},
		},
		{
			name:     "no operator",
			question: "total revenue by country",
		},
		{
			name:     "is glued to a longer word",
			question: "country isolation level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFilter(tt.question, columns)
			if tt.expected == nil {
				assert.False(t, ok)
				assert.Nil(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractFilter_ColumnGluedToPrecedingWord(t *testing.T) {
	_, ok := ExtractFilter("subregion is North", []string{"Region"})
	assert.False(t, ok)
}

func TestExtractFilter_LongestColumnFirst(t *testing.T) {
	got, ok := ExtractFilter("count where country code = FR", []string{"Code", "Country Code"})
	require.True(t, ok)
	assert.Equal(t, "Country Code", got.Column)
	assert.Equal(t, "FR", got.Value)
}

func TestDetectGroupBy(t *testing.T) {
	columns := []string{"Service", "Service Type", "Revenue", "Region"}

	tests := []struct {
		question string
		expected string
	}{
		{"total revenue by region", "Region"},
		{"average revenue per service type", "Service Type"},
		{"sum revenue group by service", "Service"},
		{"revenue by regional office", ""},
		{"total revenue", ""},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, ok := DetectGroupBy(tt.question, columns)
			assert.Equal(t, tt.expected != "", ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDetectGroupBy_Exclude(t *testing.T) {
	_, ok := DetectGroupBy("revenue by region", []string{"Region", "Revenue"}, "Region")
	assert.False(t, ok)
}
