package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"parkride/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// FacilityCacheTTL bounds how stale a cached availability count can get.
const FacilityCacheTTL = 30 * time.Second

const facilityCachePrefix = "cache:facility:"

// GetFacility retrieves a facility from cache. Returns nil, nil on a miss.
func (s *CacheStore) GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error) {
	data, err := s.client.Get(ctx, facilityCachePrefix+facilityID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var facility domain.Facility
	if err := json.Unmarshal(data, &facility); err != nil {
		return nil, err
	}
	return &facility, nil
}

// SetFacility stores a facility in cache.
func (s *CacheStore) SetFacility(ctx context.Context, facility *domain.Facility) error {
	data, err := json.Marshal(facility)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, facilityCachePrefix+facility.ID, data, FacilityCacheTTL).Err()
}

// InvalidateFacility removes a facility from cache.
func (s *CacheStore) InvalidateFacility(ctx context.Context, facilityID string) error {
	return s.client.Del(ctx, facilityCachePrefix+facilityID).Err()
}
