package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/user/linkcleaner-service/internal/repository"
)

const (
	// copyAckTTL is how long a copy acknowledgment stays visible before it
	// resets on its own.
	copyAckTTL = 2 * time.Second
	// pendingDeleteTTL bounds how long an unanswered delete confirmation can
	// stay pending.
	pendingDeleteTTL = 60 * time.Second
)

// ErrNoPendingDelete means a confirmation arrived with no pending target,
// either because none was requested or because it expired.
var ErrNoPendingDelete = errors.New("no delete is pending confirmation")

// TransientManager drives the two short-lived state machines around the
// history view: the auto-expiring copy acknowledgment and the two-step delete
// confirmation.
type TransientManager interface {
	// MarkCopied acknowledges a copy of the given record. A newer copy
	// replaces the acknowledgment; storage failures are swallowed, matching
	// the lenient clipboard policy.
	MarkCopied(ctx context.Context, id string)
	// Copied returns the id of the most recently copied record, or "".
	Copied(ctx context.Context) string
	// RequestDelete stages a record for deletion pending confirmation.
	RequestDelete(ctx context.Context, id string) error
	// CancelDelete abandons the pending confirmation with no side effect.
	CancelDelete(ctx context.Context)
	// ConfirmDelete deletes the pending target from the store and removes it
	// from the local history. The pending state is cleared whatever the
	// outcome; a failed delete is surfaced but never retried here.
	ConfirmDelete(ctx context.Context) (string, error)
}

type transientManager struct {
	copyAck repository.CopyAckRepository
	pending repository.PendingDeleteRepository
	store   repository.RecordStoreRepository
	history HistoryCollection
}

// NewTransientManager creates the transient-state manager.
func NewTransientManager(
	copyAck repository.CopyAckRepository,
	pending repository.PendingDeleteRepository,
	store repository.RecordStoreRepository,
	history HistoryCollection,
) TransientManager {
	return &transientManager{
		copyAck: copyAck,
		pending: pending,
		store:   store,
		history: history,
	}
}

func (m *transientManager) MarkCopied(ctx context.Context, id string) {
	if err := m.copyAck.MarkCopied(ctx, id, copyAckTTL); err != nil {
		slog.Warn("Failed to store copy acknowledgment", "record_id", id, "error", err)
	}
}

func (m *transientManager) Copied(ctx context.Context) string {
	id, err := m.copyAck.Copied(ctx)
	if err != nil {
		slog.Warn("Failed to read copy acknowledgment", "error", err)
		return ""
	}
	return id
}

func (m *transientManager) RequestDelete(ctx context.Context, id string) error {
	return m.pending.Set(ctx, id, pendingDeleteTTL)
}

func (m *transientManager) CancelDelete(ctx context.Context) {
	if err := m.pending.Clear(ctx); err != nil {
		slog.Warn("Failed to clear pending delete", "error", err)
	}
}

func (m *transientManager) ConfirmDelete(ctx context.Context) (string, error) {
	id, err := m.pending.Get(ctx)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNoPendingDelete
	}

	// Pending state always returns to idle, delete outcome notwithstanding.
	defer func() {
		if err := m.pending.Clear(ctx); err != nil {
			slog.Warn("Failed to clear pending delete after confirmation", "record_id", id, "error", err)
		}
	}()

	ok, err := m.store.Delete(ctx, id)
	if err != nil {
		return id, err
	}
	if ok {
		m.history.RemoveLocally(id)
	}
	return id, nil
}
