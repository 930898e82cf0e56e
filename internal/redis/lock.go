package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still carries the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore hands out per-facility review locks backed by Redis keys.
// Each holder is identified by a random token so an expired holder
// cannot release a lock that has since been taken by someone else.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

func facilityLockKey(facilityID string) string {
	return fmt.Sprintf("parkride:lock:facility:%s", facilityID)
}

// AcquireFacilityLock tries once to take the facility lock for ttl.
// On success it returns the token that must be presented to release it.
func (s *LockStore) AcquireFacilityLock(ctx context.Context, facilityID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, facilityLockKey(facilityID), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire facility lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseFacilityLock drops the facility lock if token still owns it.
// A lock that expired and was re-acquired by another holder is left alone.
func (s *LockStore) ReleaseFacilityLock(ctx context.Context, facilityID, token string) error {
	if token == "" {
		return errors.New("release facility lock: empty token")
	}
	if err := releaseScript.Run(ctx, s.client, []string{facilityLockKey(facilityID)}, token).Err(); err != nil {
		return fmt.Errorf("release facility lock: %w", err)
	}
	return nil
}
