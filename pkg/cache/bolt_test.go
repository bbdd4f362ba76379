package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

func TestBoltProfileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profiles.db")

	store, err := NewBoltProfileStore(path)
	require.NoError(t, err)

	fileID := uuid.New()
	got, err := store.Get(ctx, fileID)
	require.NoError(t, err)
	assert.Nil(t, got)

	p := &models.FileProfile{FileID: fileID, RowCount: 3, NumericColumns: []string{"Revenue"}, Fingerprint: "f1"}
	require.NoError(t, store.Upsert(ctx, p))
	require.NoError(t, store.Close())

	// Profiles survive reopening the file.
	store, err = NewBoltProfileStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, err = store.Get(ctx, fileID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.RowCount)
	assert.Equal(t, []string{"Revenue"}, got.NumericColumns)
	assert.Equal(t, "f1", got.Fingerprint)

	require.NoError(t, store.Delete(ctx, fileID))
	got, err = store.Get(ctx, fileID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
