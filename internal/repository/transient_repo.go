package repository

import (
	"context"
	"time"
)

// CopyAckRepository tracks the single most recent copy acknowledgment. Marking
// a new id replaces the previous one; the entry expires on its own after the
// given TTL.
type CopyAckRepository interface {
	MarkCopied(ctx context.Context, id string, ttl time.Duration) error
	// Copied returns the currently acknowledged record id, or "" when the
	// acknowledgment has expired or none was set.
	Copied(ctx context.Context) (string, error)
}

// PendingDeleteRepository holds the single delete-confirmation target. The
// entry expires after the given TTL so an abandoned confirmation cannot linger.
type PendingDeleteRepository interface {
	Set(ctx context.Context, id string, ttl time.Duration) error
	// Get returns the pending target id, or "" when none is pending.
	Get(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
