package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DeletedIDs remembers ids whose message was deleted. Ids are never reused, so
// a marker stays true forever; the TTL only bounds how long redis keeps it.
type DeletedIDs struct {
	redis redis.Cmdable
	ttl   time.Duration
}

// NewDeletedIDs builds a DeletedIDs. Markers expire after ttl.
func NewDeletedIDs(client redis.Cmdable, ttl time.Duration) *DeletedIDs {
	return &DeletedIDs{redis: client, ttl: ttl}
}

func deletedKey(id uuid.UUID) string {
	return fmt.Sprintf("schedule_deleted:%s", id)
}

// Mark records id as deleted.
func (d *DeletedIDs) Mark(ctx context.Context, id uuid.UUID) error {
	return d.redis.Set(ctx, deletedKey(id), "1", d.ttl).Err()
}

// IsDeleted reports whether a marker for id exists.
func (d *DeletedIDs) IsDeleted(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := d.redis.Exists(ctx, deletedKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
