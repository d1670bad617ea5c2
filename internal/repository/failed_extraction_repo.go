package repository

import (
	"context"

	"github.com/user/linkcleaner-service/internal/entity"
)

// FailedExtractionRepository defines the interface for the audit trail of
// extraction attempts that produced no record.
type FailedExtractionRepository interface {
	// SaveOrUpdate creates a row for a failed input URL, or bumps its attempt
	// count if one exists.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedExtraction) error
	// ListRecent returns the most recently failed inputs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*entity.FailedExtraction, error)
}
