package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	in, ok := ParseIntent("  SUM ")
	assert.True(t, ok)
	assert.Equal(t, IntentSum, in)

	_, ok = ParseIntent("unknown")
	assert.False(t, ok, "unknown is an answer intent, never a forced one")

	_, ok = ParseIntent("median")
	assert.False(t, ok)
}

func TestIntents(t *testing.T) {
	all := Intents()
	assert.Len(t, all, 12)
	assert.Equal(t, "rows", all[0])
	for _, s := range all {
		_, ok := ParseIntent(s)
		assert.True(t, ok, s)
	}
}

func TestIntentKinds(t *testing.T) {
	assert.True(t, IntentCompare.IsNumeric())
	assert.False(t, IntentCount.IsNumeric())
	assert.True(t, IntentTop.IsCategorical())
	assert.False(t, IntentSum.IsCategorical())
}

func TestScope(t *testing.T) {
	file, project := uuid.New(), uuid.New()

	assert.True(t, Scope{FileID: file, ProjectID: project}.IsFile())
	assert.False(t, Scope{FileID: file, ProjectID: project}.IsProject(), "file scope wins")
	assert.True(t, Scope{ProjectID: project}.IsProject())
	assert.False(t, Scope{}.IsFile())
	assert.False(t, Scope{}.IsProject())
}

func TestFileProfile_Summary(t *testing.T) {
	var nilProfile *FileProfile
	assert.Nil(t, nilProfile.Summary())
	assert.Equal(t, "", nilProfile.FirstColumn())

	p := &FileProfile{
		RowCount:       3,
		ColumnCount:    2,
		Columns:        []string{"Partner", "Charge"},
		NumericColumns: []string{"Charge"},
	}
	s := p.Summary()
	assert.Equal(t, int64(3), s.RowCount)
	assert.Equal(t, "Partner", p.FirstColumn())

	s.NumericColumns[0] = "changed"
	assert.Equal(t, "Charge", p.NumericColumns[0], "summary must not alias the profile")
}
