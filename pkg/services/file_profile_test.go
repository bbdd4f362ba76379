package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

type mockProfileStore struct {
	mock.Mock
}

func (m *mockProfileStore) Get(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FileProfile), args.Error(1)
}

func (m *mockProfileStore) Upsert(ctx context.Context, profile *models.FileProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *mockProfileStore) Delete(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

// stubFiles is a single-file catalog and row source.
type stubFiles struct {
	columns   []string
	rows      []models.Row
	listCalls int
}

func (s *stubFiles) GetFile(ctx context.Context, id uuid.UUID) (*models.FileInfo, error) {
	return &models.FileInfo{ID: id, Name: "roaming.csv"}, nil
}

func (s *stubFiles) ListColumns(ctx context.Context, id uuid.UUID) ([]string, error) {
	return s.columns, nil
}

func (s *stubFiles) ListFilesInProject(ctx context.Context, projectID uuid.UUID) ([]models.FileInfo, error) {
	return nil, nil
}

func (s *stubFiles) ListRows(ctx context.Context, fileID uuid.UUID, limit, offset int) ([]models.Row, error) {
	s.listCalls++
	if offset >= len(s.rows) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.rows) {
		end = len(s.rows)
	}
	return s.rows[offset:end], nil
}

func newStubFiles() *stubFiles {
	return &stubFiles{
		columns: []string{"Country", "Revenue", "Date"},
		rows: []models.Row{
			{"Country": "DE", "Revenue": "10", "Date": "2024-01-01"},
			{"Country": "FR", "Revenue": "20", "Date": "2024-01-02"},
			{"Country": "ES", "Revenue": "n/a", "Date": "2024-01-03"},
		},
	}
}

func newTestProfileService(files *stubFiles, cache, store ProfileStore) FileProfileService {
	cfg := insights.DefaultConfig()
	executor := insights.NewExecutor(nil, insights.NewInMemoryExecutor(files, cfg, zap.NewNop()), zap.NewNop())
	return NewFileProfileService(files, files, executor, cache, store, cfg, zap.NewNop())
}

func TestFileProfileService_BuildsAndSavesOnMiss(t *testing.T) {
	files := newStubFiles()
	fileID := uuid.New()
	cache, store := &mockProfileStore{}, &mockProfileStore{}

	cache.On("Get", mock.Anything, fileID).Return(nil, nil)
	store.On("Get", mock.Anything, fileID).Return(nil, nil)
	store.On("Upsert", mock.Anything, mock.AnythingOfType("*models.FileProfile")).Return(nil)
	cache.On("Upsert", mock.Anything, mock.AnythingOfType("*models.FileProfile")).Return(nil)

	svc := newTestProfileService(files, cache, store)
	p, err := svc.GetOrBuildFileProfile(context.Background(), fileID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), p.RowCount)
	assert.Equal(t, 3, p.ColumnCount)
	assert.Equal(t, []string{"Revenue"}, p.NumericColumns)
	assert.Equal(t, []string{"Date"}, p.DateColumns)
	assert.Equal(t, []string{"Country"}, p.CategoricalColumns)
	assert.Equal(t, insights.Fingerprint(files.columns), p.Fingerprint)

	cache.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestFileProfileService_CacheHit(t *testing.T) {
	files := newStubFiles()
	fileID := uuid.New()
	cached := &models.FileProfile{FileID: fileID, RowCount: 42, Fingerprint: insights.Fingerprint(files.columns)}

	cache, store := &mockProfileStore{}, &mockProfileStore{}
	cache.On("Get", mock.Anything, fileID).Return(cached, nil)

	svc := newTestProfileService(files, cache, store)
	p, err := svc.GetOrBuildFileProfile(context.Background(), fileID)
	require.NoError(t, err)

	assert.Same(t, cached, p)
	assert.Zero(t, files.listCalls, "no rows are read on a cache hit")
	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestFileProfileService_StoreHitWarmsCache(t *testing.T) {
	files := newStubFiles()
	fileID := uuid.New()
	stored := &models.FileProfile{FileID: fileID, RowCount: 7, Fingerprint: insights.Fingerprint(files.columns)}

	cache, store := &mockProfileStore{}, &mockProfileStore{}
	cache.On("Get", mock.Anything, fileID).Return(nil, nil)
	store.On("Get", mock.Anything, fileID).Return(stored, nil)
	cache.On("Upsert", mock.Anything, stored).Return(nil)

	svc := newTestProfileService(files, cache, store)
	p, err := svc.GetOrBuildFileProfile(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.RowCount)
	cache.AssertExpectations(t)
}

func TestFileProfileService_StaleFingerprintRebuilds(t *testing.T) {
	files := newStubFiles()
	fileID := uuid.New()
	stale := &models.FileProfile{FileID: fileID, RowCount: 99, Fingerprint: "old"}

	store := &mockProfileStore{}
	store.On("Get", mock.Anything, fileID).Return(stale, nil)
	store.On("Upsert", mock.Anything, mock.AnythingOfType("*models.FileProfile")).Return(nil)

	svc := newTestProfileService(files, nil, store)
	p, err := svc.GetOrBuildFileProfile(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.RowCount)
	assert.NotEqual(t, "old", p.Fingerprint)
	store.AssertExpectations(t)
}

func TestFileProfileService_StoreErrorsAreMisses(t *testing.T) {
	files := newStubFiles()
	fileID := uuid.New()

	cache := &mockProfileStore{}
	cache.On("Get", mock.Anything, fileID).Return(nil, errors.New("redis down"))
	cache.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	svc := newTestProfileService(files, cache, nil)
	p, err := svc.GetOrBuildFileProfile(context.Background(), fileID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.RowCount)
}

func TestFileProfileService_Invalidate(t *testing.T) {
	files := newStubFiles()
	fileID := uuid.New()
	cache, store := &mockProfileStore{}, &mockProfileStore{}
	cache.On("Delete", mock.Anything, fileID).Return(nil)
	store.On("Delete", mock.Anything, fileID).Return(nil)

	svc := newTestProfileService(files, cache, store)
	require.NoError(t, svc.InvalidateFileProfile(context.Background(), fileID))
	cache.AssertExpectations(t)
	store.AssertExpectations(t)

	failing := &mockProfileStore{}
	failing.On("Delete", mock.Anything, fileID).Return(errors.New("boom"))
	svc = newTestProfileService(files, failing, nil)
	assert.Error(t, svc.InvalidateFileProfile(context.Background(), fileID))
}
