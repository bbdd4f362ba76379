package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/database"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// ProfileRepository persists FileProfiles. A missing profile is not an error.
type ProfileRepository interface {
	// Get returns the stored profile, or nil, nil when none exists.
	Get(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error)
	Upsert(ctx context.Context, profile *models.FileProfile) error
	Delete(ctx context.Context, fileID uuid.UUID) error
}

type profileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) ProfileRepository {
	return &profileRepository{db: db}
}

var _ ProfileRepository = (*profileRepository)(nil)

func (r *profileRepository) Get(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT profile FROM file_profiles WHERE file_id = $1`, fileID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile for file %s: %w", fileID, err)
	}

	var p models.FileProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile for file %s: %w", fileID, err)
	}
	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.FileProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	query := `
		INSERT INTO file_profiles (file_id, profile, fingerprint, generated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (file_id) DO UPDATE
		SET profile = EXCLUDED.profile,
		    fingerprint = EXCLUDED.fingerprint,
		    generated_at = EXCLUDED.generated_at`

	if _, err := r.db.Exec(ctx, query, profile.FileID, raw, profile.Fingerprint, profile.GeneratedAt); err != nil {
		return fmt.Errorf("failed to upsert profile for file %s: %w", profile.FileID, err)
	}
	return nil
}

func (r *profileRepository) Delete(ctx context.Context, fileID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM file_profiles WHERE file_id = $1`, fileID); err != nil {
		return fmt.Errorf("failed to delete profile for file %s: %w", fileID, err)
	}
	return nil
}
