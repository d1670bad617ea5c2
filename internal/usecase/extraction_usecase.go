package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/linkcleaner-service/internal/entity"
	"github.com/user/linkcleaner-service/internal/repository"
	"github.com/user/linkcleaner-service/pkg/metrics"
)

var (
	// ErrEmptyInput means the trimmed input was empty; the pipeline does not
	// start and no state changes.
	ErrEmptyInput = errors.New("input URL is empty")
	// ErrExtractionInFlight means another extraction is running on this
	// manager instance.
	ErrExtractionInFlight = errors.New("an extraction is already in flight")
)

// ExtractionManager orchestrates one extraction: validate input, call the
// extractor, apply the fallback policy, persist the record, refresh the
// history.
type ExtractionManager interface {
	// Extract runs the pipeline for rawInput and returns the ephemeral result
	// together with the persisted record.
	Extract(ctx context.Context, rawInput string) (*entity.ExtractionResult, *entity.Record, error)
	// LastResult returns the most recent successful extraction, or nil.
	LastResult() *entity.ExtractionResult
}

type extractionManager struct {
	extractor repository.LinkExtractor
	store     repository.RecordStoreRepository
	history   HistoryCollection
	failures  repository.FailedExtractionRepository
	mode      string

	inFlight atomic.Bool

	mu         sync.Mutex
	lastResult *entity.ExtractionResult
}

// NewExtractionManager creates the extraction orchestrator. failures may be
// nil when no audit store is wired; failure rows are then skipped.
func NewExtractionManager(
	extractor repository.LinkExtractor,
	store repository.RecordStoreRepository,
	history HistoryCollection,
	failures repository.FailedExtractionRepository,
	mode string,
) ExtractionManager {
	return &extractionManager{
		extractor: extractor,
		store:     store,
		history:   history,
		failures:  failures,
		mode:      mode,
	}
}

func (m *extractionManager) Extract(ctx context.Context, rawInput string) (*entity.ExtractionResult, *entity.Record, error) {
	input := strings.TrimSpace(rawInput)
	if input == "" {
		return nil, nil, ErrEmptyInput
	}

	// One extraction at a time per manager instance.
	if !m.inFlight.CompareAndSwap(false, true) {
		return nil, nil, ErrExtractionInFlight
	}
	defer m.inFlight.Store(false)

	start := time.Now()
	extracted, err := m.extractor.ExtractOriginalLink(ctx, input)
	metrics.ExtractionDuration.WithLabelValues(m.mode).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Error("Extraction failed", "input", input, "error", err)
		metrics.ExtractionsTotal.WithLabelValues("failure", errorType(err)).Inc()
		m.recordFailure(ctx, input, err)
		return nil, nil, err
	}
	metrics.ExtractionsTotal.WithLabelValues("success", "").Inc()

	extracted = strings.TrimSpace(extracted)
	if extracted == "" {
		// The destination field must never end up empty; reuse the input.
		extracted = input
	}

	result := &entity.ExtractionResult{InputURL: input, ExtractedURL: extracted}
	m.setLastResult(result)

	rec, err := m.store.Create(ctx, entity.RecordFields{
		InputURL:     input,
		ExtractedURL: extracted,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := m.history.Refresh(ctx); err != nil {
		// The record is persisted; a stale view corrects on the next refresh.
		slog.Warn("Failed to refresh history after create", "error", err)
	}

	slog.Info("Extraction persisted", "record_id", rec.RecordID, "input", input, "extracted", extracted)
	return result, rec, nil
}

func (m *extractionManager) LastResult() *entity.ExtractionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastResult
}

func (m *extractionManager) setLastResult(result *entity.ExtractionResult) {
	m.mu.Lock()
	m.lastResult = result
	m.mu.Unlock()
}

// recordFailure writes an audit row for a failed extraction. Best effort: the
// pipeline outcome does not depend on it.
func (m *extractionManager) recordFailure(ctx context.Context, input string, cause error) {
	if m.failures == nil {
		return
	}
	failed := &entity.FailedExtraction{
		InputURL:             input,
		FailureReason:        cause.Error(),
		Mode:                 m.mode,
		LastAttemptTimestamp: time.Now(),
	}
	if err := m.failures.SaveOrUpdate(ctx, failed); err != nil {
		slog.Warn("Failed to record extraction failure", "input", input, "error", err)
	}
}

func errorType(err error) string {
	var extractionErr *repository.ExtractionError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &extractionErr):
		return "extraction"
	default:
		return "unknown"
	}
}
