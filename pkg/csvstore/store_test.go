package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

const roamingCSV = "\ufeffCountry,Service,Revenue\nDE,Voice,10\nFR,\"Data, 4G\",\"1,000\"\nES,SMS\n"

func TestParse(t *testing.T) {
	columns, rows, err := Parse(strings.NewReader(roamingCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"Country", "Service", "Revenue"}, columns)
	require.Len(t, rows, 3)
	assert.Equal(t, models.Row{"Country": "FR", "Service": "Data, 4G", "Revenue": "1,000"}, rows[1])
	assert.Equal(t, "", rows[2]["Revenue"], "short records leave trailing cells empty")
}

func TestParse_DuplicateAndEmptyHeaders(t *testing.T) {
	columns, _, err := Parse(strings.NewReader("Cost,,Cost,Cost\n1,2,3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cost", "Column 2", "Cost (2)", "Cost (3)"}, columns)
}

func TestParse_Empty(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestStore_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roaming.csv")
	require.NoError(t, os.WriteFile(path, []byte(roamingCSV), 0o600))

	s := New()
	info, err := s.LoadFile(path)
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "roaming.csv", info.Name)
	assert.Equal(t, FileID(path), info.ID, "ids are deterministic per path")
	assert.Equal(t, ProjectID, info.ProjectID)

	got, err := s.GetFile(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Name, got.Name)

	cols, err := s.ListColumns(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Country", "Service", "Revenue"}, cols)

	page, err := s.ListRows(ctx, info.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
	page, err = s.ListRows(ctx, info.ID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)
	page, err = s.ListRows(ctx, info.ID, 2, 4)
	require.NoError(t, err)
	assert.Empty(t, page)

	files, err := s.ListFilesInProject(ctx, ProjectID)
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestStore_NotFound(t *testing.T) {
	s := New()
	_, err := s.GetFile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = s.ListRows(context.Background(), uuid.New(), 10, 0)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
