package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkcleaner-service/internal/repository"
)

const pendingDeleteKey = "linkcleaner:pendingdelete"

// PendingDeleteRepoImpl provides a concrete implementation for the
// PendingDeleteRepository interface using Redis. The TTL bounds how long an
// unanswered confirmation can stay pending.
type PendingDeleteRepoImpl struct {
	client *redis.Client
}

// NewPendingDeleteRepo creates a new instance of PendingDeleteRepoImpl.
func NewPendingDeleteRepo(client *redis.Client) *PendingDeleteRepoImpl {
	return &PendingDeleteRepoImpl{client: client}
}

// Set records id as the delete-confirmation target, expiring after ttl.
func (r *PendingDeleteRepoImpl) Set(ctx context.Context, id string, ttl time.Duration) error {
	return r.client.SetEx(ctx, pendingDeleteKey, id, ttl).Err()
}

// Get returns the pending target id, or "" when none is pending.
func (r *PendingDeleteRepoImpl) Get(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, pendingDeleteKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Clear removes the pending target.
func (r *PendingDeleteRepoImpl) Clear(ctx context.Context) error {
	return r.client.Del(ctx, pendingDeleteKey).Err()
}

var _ repository.PendingDeleteRepository = (*PendingDeleteRepoImpl)(nil)
