package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/linkcleaner-service/internal/repository"
)

const copyAckKey = "linkcleaner:copyack"

// CopyAckRepoImpl provides a concrete implementation for the CopyAckRepository
// interface using Redis. A single key with a TTL gives both behaviors the
// acknowledgment needs: the entry expires on its own, and marking a new id
// atomically replaces the previous one.
type CopyAckRepoImpl struct {
	client *redis.Client
}

// NewCopyAckRepo creates a new instance of CopyAckRepoImpl.
func NewCopyAckRepo(client *redis.Client) *CopyAckRepoImpl {
	return &CopyAckRepoImpl{client: client}
}

// MarkCopied records id as the most recent copy, expiring after ttl.
func (r *CopyAckRepoImpl) MarkCopied(ctx context.Context, id string, ttl time.Duration) error {
	return r.client.SetEx(ctx, copyAckKey, id, ttl).Err()
}

// Copied returns the currently acknowledged id, or "" once the TTL has run out.
func (r *CopyAckRepoImpl) Copied(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, copyAckKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

var _ repository.CopyAckRepository = (*CopyAckRepoImpl)(nil)
