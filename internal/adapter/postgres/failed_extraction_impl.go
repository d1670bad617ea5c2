package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/linkcleaner-service/internal/entity"
	"github.com/user/linkcleaner-service/internal/repository"
)

// FailedExtractionRepoImpl provides a concrete implementation for the
// FailedExtractionRepository interface using PostgreSQL.
type FailedExtractionRepoImpl struct {
	db *pgxpool.Pool
}

// NewFailedExtractionRepo creates a new instance of FailedExtractionRepoImpl.
func NewFailedExtractionRepo(db *pgxpool.Pool) *FailedExtractionRepoImpl {
	return &FailedExtractionRepoImpl{db: db}
}

// SaveOrUpdate creates a row for a failed input URL. On conflict the row is
// refreshed and attempt_count incremented.
func (r *FailedExtractionRepoImpl) SaveOrUpdate(ctx context.Context, failed *entity.FailedExtraction) error {
	query := `
		INSERT INTO failed_extractions (input_url, failure_reason, mode, last_attempt_timestamp, attempt_count)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (input_url) DO UPDATE SET
			failure_reason = EXCLUDED.failure_reason,
			mode = EXCLUDED.mode,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp,
			attempt_count = failed_extractions.attempt_count + 1;
	`
	_, err := r.db.Exec(ctx, query,
		failed.InputURL,
		failed.FailureReason,
		failed.Mode,
		failed.LastAttemptTimestamp,
	)
	return err
}

// ListRecent returns the most recently failed inputs, newest first.
func (r *FailedExtractionRepoImpl) ListRecent(ctx context.Context, limit int) ([]*entity.FailedExtraction, error) {
	query := `
		SELECT id, input_url, failure_reason, mode, last_attempt_timestamp, attempt_count
		FROM failed_extractions
		ORDER BY last_attempt_timestamp DESC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []*entity.FailedExtraction
	for rows.Next() {
		var fe entity.FailedExtraction
		if err := rows.Scan(
			&fe.ID,
			&fe.InputURL,
			&fe.FailureReason,
			&fe.Mode,
			&fe.LastAttemptTimestamp,
			&fe.AttemptCount,
		); err != nil {
			return nil, err
		}
		failures = append(failures, &fe)
	}

	return failures, rows.Err()
}

var _ repository.FailedExtractionRepository = (*FailedExtractionRepoImpl)(nil)
