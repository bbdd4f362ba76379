package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/retry"
)

// ProfileStore is a place FileProfiles can be kept: the Postgres table, Redis, or bbolt.
// Get returns nil, nil when nothing is stored.
type ProfileStore interface {
	Get(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error)
	Upsert(ctx context.Context, profile *models.FileProfile) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}

// FileProfileService returns the column classification of a file, building it on demand.
type FileProfileService interface {
	insights.ProfileProvider

	// InvalidateFileProfile drops every stored copy so the next request rebuilds it.
	InvalidateFileProfile(ctx context.Context, fileID uuid.UUID) error
}

type fileProfileService struct {
	catalog  insights.FileCatalog
	rows     insights.RowSource
	executor *insights.Executor
	cache    ProfileStore
	store    ProfileStore
	cfg      insights.Config
	retry    *retry.Config
	logger   *zap.Logger
}

// NewFileProfileService creates a profile service. Profiles are looked up in cache, then
// store, then built from a row sample; either store may be nil. The executor supplies the
// total row count.
func NewFileProfileService(
	catalog insights.FileCatalog,
	rows insights.RowSource,
	executor *insights.Executor,
	cache ProfileStore,
	store ProfileStore,
	cfg insights.Config,
	logger *zap.Logger,
) FileProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("file-profile")
	return &fileProfileService{
		catalog:  catalog,
		rows:     rows,
		executor: executor,
		cache:    cache,
		store:    store,
		cfg:      cfg.Normalize(),
		retry:    retry.DefaultConfig().Logged(logger, "profile_sample"),
		logger:   logger,
	}
}

var _ FileProfileService = (*fileProfileService)(nil)

// GetOrBuildFileProfile returns a profile whose fingerprint matches the file's current columns.
// Cache and store failures are logged and treated as misses.
func (s *fileProfileService) GetOrBuildFileProfile(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	columns, err := s.catalog.ListColumns(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	fingerprint := insights.Fingerprint(columns)

	if p := s.lookup(ctx, s.cache, "cache", fileID, fingerprint); p != nil {
		return p, nil
	}
	if p := s.lookup(ctx, s.store, "store", fileID, fingerprint); p != nil {
		s.save(ctx, s.cache, "cache", p)
		return p, nil
	}

	p, err := s.build(ctx, fileID, columns)
	if err != nil {
		return nil, err
	}
	s.save(ctx, s.store, "store", p)
	s.save(ctx, s.cache, "cache", p)

	s.logger.Info("Built file profile",
		zap.String("file_id", fileID.String()),
		zap.Int64("rows", p.RowCount),
		zap.Int("sampled", p.SampledRows),
		zap.Int("numeric", len(p.NumericColumns)),
		zap.Int("date", len(p.DateColumns)),
		zap.Int("categorical", len(p.CategoricalColumns)))
	return p, nil
}

func (s *fileProfileService) InvalidateFileProfile(ctx context.Context, fileID uuid.UUID) error {
	for _, st := range []ProfileStore{s.cache, s.store} {
		if st == nil {
			continue
		}
		if err := st.Delete(ctx, fileID); err != nil {
			return fmt.Errorf("failed to invalidate profile for file %s: %w", fileID, err)
		}
	}
	return nil
}

func (s *fileProfileService) lookup(ctx context.Context, st ProfileStore, layer string, fileID uuid.UUID, fingerprint string) *models.FileProfile {
	if st == nil {
		return nil
	}
	p, err := st.Get(ctx, fileID)
	if err != nil {
		s.logger.Warn("Profile lookup failed",
			zap.String("layer", layer),
			zap.String("file_id", fileID.String()),
			zap.Error(err))
		return nil
	}
	if p == nil {
		return nil
	}
	if p.Fingerprint != fingerprint {
		s.logger.Debug("Stale file profile",
			zap.String("layer", layer),
			zap.String("file_id", fileID.String()))
		return nil
	}
	return p
}

func (s *fileProfileService) save(ctx context.Context, st ProfileStore, layer string, p *models.FileProfile) {
	if st == nil {
		return
	}
	if err := st.Upsert(ctx, p); err != nil {
		s.logger.Warn("Failed to save file profile",
			zap.String("layer", layer),
			zap.String("file_id", p.FileID.String()),
			zap.Error(err))
	}
}

func (s *fileProfileService) build(ctx context.Context, fileID uuid.UUID, columns []string) (*models.FileProfile, error) {
	sample, err := insights.LoadRows(ctx, s.rows, fileID, s.cfg.ProfileSampleRows, s.cfg.FetchBatchSize, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to sample rows: %w", err)
	}

	res, err := s.executor.Run(ctx, insights.Plan{FileID: fileID, Intent: models.IntentRows})
	if err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}
	var rowCount int64
	if res != nil {
		rowCount = res.Count
	}
	return insights.BuildProfile(fileID, columns, sample, rowCount, s.cfg), nil
}
