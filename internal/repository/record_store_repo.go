package repository

import (
	"context"
	"errors"

	"github.com/user/linkcleaner-service/internal/entity"
)

// ErrRecordNotFound is returned when the store has no record for the given id.
var ErrRecordNotFound = errors.New("record not found")

// RemoteError is any non-success response from the record-store API. Message
// carries the raw response body; callers render it as-is and never inspect
// status codes.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// RecordStoreRepository defines the contract for the remote record store that
// holds the URL analysis collection. Every operation is a single network
// round-trip with no retries.
type RecordStoreRepository interface {
	// List retrieves the full collection in the store's retrieval order.
	List(ctx context.Context) ([]entity.Record, error)
	// Get retrieves one record by id, or ErrRecordNotFound.
	Get(ctx context.Context, id string) (*entity.Record, error)
	// Create persists a new record and returns it with store-assigned metadata.
	Create(ctx context.Context, fields entity.RecordFields) (*entity.Record, error)
	// Update applies a partial field update and returns the updated record.
	Update(ctx context.Context, id string, patch entity.RecordPatch) (*entity.Record, error)
	// Delete removes a record. It reports true on any response the store
	// acknowledges as a deletion, including an empty body.
	Delete(ctx context.Context, id string) (bool, error)
}
