package redis

import (
	"context"
	"time"

	"parkride/internal/domain"
)

// FacilityCacheInterface defines the read-through cache for facility lookups.
type FacilityCacheInterface interface {
	GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error)
	SetFacility(ctx context.Context, facility *domain.Facility) error
	InvalidateFacility(ctx context.Context, facilityID string) error
}

// LockStoreInterface defines the interface for distributed locking.
// Acquire returns an owner token; Release only frees a lock held under that token.
type LockStoreInterface interface {
	AcquireFacilityLock(ctx context.Context, facilityID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseFacilityLock(ctx context.Context, facilityID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ FacilityCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
