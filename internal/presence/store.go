// Package presence tracks driver online status in Redis with TTL heartbeats.
// The persisted is_online flag on the driver row is the authoritative gate;
// the heartbeat catches drivers whose app died without going offline.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

// HeartbeatTTL is how long a driver stays online without a heartbeat.
const HeartbeatTTL = 90 * time.Second

// Store tracks driver presence
type Store struct {
	client redislib.Cmdable
}

// NewStore creates a presence store
func NewStore(client redislib.Cmdable) *Store {
	return &Store{client: client}
}

func key(driverID uuid.UUID) string {
	return fmt.Sprintf("presence:driver:%s", driverID)
}

// Heartbeat marks the driver online for HeartbeatTTL
func (s *Store) Heartbeat(ctx context.Context, driverID uuid.UUID) error {
	return s.client.Set(ctx, key(driverID), "1", HeartbeatTTL).Err()
}

// SetOffline removes the driver's presence key
func (s *Store) SetOffline(ctx context.Context, driverID uuid.UUID) error {
	return s.client.Del(ctx, key(driverID)).Err()
}

// IsOnline reports whether the driver has a live heartbeat
func (s *Store) IsOnline(ctx context.Context, driverID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, key(driverID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
