package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

var bucketProfiles = []byte("file_profiles")

// BoltProfileStore persists FileProfiles in a local bbolt file.
type BoltProfileStore struct {
	db *bbolt.DB
}

// NewBoltProfileStore opens (or creates) the bbolt file at path.
func NewBoltProfileStore(path string) (*BoltProfileStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketProfiles); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketProfiles, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltProfileStore{db: db}, nil
}

// Get returns the stored profile, or nil, nil when none exists.
func (s *BoltProfileStore) Get(_ context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	var p *models.FileProfile
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketProfiles).Get([]byte(fileID.String()))
		if data == nil {
			return nil
		}
		p = &models.FileProfile{}
		return json.Unmarshal(data, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return p, nil
}

func (s *BoltProfileStore) Upsert(_ context.Context, profile *models.FileProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProfiles).Put([]byte(profile.FileID.String()), data)
	})
}

func (s *BoltProfileStore) Delete(_ context.Context, fileID uuid.UUID) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketProfiles).Delete([]byte(fileID.String()))
	})
}

// Close releases the bbolt file lock.
func (s *BoltProfileStore) Close() error {
	return s.db.Close()
}
