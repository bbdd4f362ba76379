// Package cache holds FileProfile stores that sit in front of, or replace, the Postgres table.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

const redisKeyPrefix = "rms:file-profile:"

// RedisProfileStore caches FileProfiles in Redis with a TTL.
type RedisProfileStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisProfileStore creates a Redis-backed profile cache. A zero ttl keeps entries forever.
func NewRedisProfileStore(client redis.Cmdable, ttl time.Duration) *RedisProfileStore {
	return &RedisProfileStore{client: client, ttl: ttl}
}

func redisKey(fileID uuid.UUID) string {
	return redisKeyPrefix + fileID.String()
}

// Get returns the cached profile, or nil, nil on a miss.
func (s *RedisProfileStore) Get(ctx context.Context, fileID uuid.UUID) (*models.FileProfile, error) {
	raw, err := s.client.Get(ctx, redisKey(fileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached profile: %w", err)
	}

	var p models.FileProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode cached profile: %w", err)
	}
	return &p, nil
}

func (s *RedisProfileStore) Upsert(ctx context.Context, profile *models.FileProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(profile.FileID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

func (s *RedisProfileStore) Delete(ctx context.Context, fileID uuid.UUID) error {
	if err := s.client.Del(ctx, redisKey(fileID)).Err(); err != nil {
		return fmt.Errorf("failed to evict cached profile: %w", err)
	}
	return nil
}
