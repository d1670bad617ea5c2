package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/user/linkcleaner-service/internal/entity"
	"github.com/user/linkcleaner-service/internal/repository"
)

// HistoryCollection is the in-memory view over the records held by the remote
// store: stable ordering, search, and reconciliation after mutations.
type HistoryCollection interface {
	// Sorted returns the collection ordered by creation time, newest first.
	// Records with equal timestamps keep their retrieval order.
	Sorted() []entity.Record
	// Search returns the sorted records whose field values contain query,
	// case-insensitively. An empty query matches everything.
	Search(query string) []entity.Record
	// RemoveLocally drops a record from the in-memory view without a
	// round-trip, used right after a confirmed delete.
	RemoveLocally(id string)
	// Refresh replaces the whole collection from the store. This is the
	// authoritative reconciliation path after create and update.
	Refresh(ctx context.Context) error
	// Len reports the current collection size.
	Len() int
}

type historyCollection struct {
	store repository.RecordStoreRepository

	mu      sync.RWMutex
	records []entity.Record
}

// NewHistoryCollection creates a history view backed by the given store. The
// collection starts empty; call Refresh to load it.
func NewHistoryCollection(store repository.RecordStoreRepository) HistoryCollection {
	return &historyCollection{store: store}
}

func (h *historyCollection) Sorted() []entity.Record {
	h.mu.RLock()
	out := make([]entity.Record, len(h.records))
	copy(out, h.records)
	h.mu.RUnlock()

	// CreatedAt is ISO-8601, so string comparison is chronological. The sort
	// must be stable to preserve retrieval order for equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

func (h *historyCollection) Search(query string) []entity.Record {
	sorted := h.Sorted()
	if query == "" {
		return sorted
	}

	q := strings.ToLower(query)
	matched := make([]entity.Record, 0, len(sorted))
	for _, rec := range sorted {
		for _, v := range rec.FieldValues() {
			if valueMatches(v, q) {
				matched = append(matched, rec)
				break
			}
		}
	}
	return matched
}

// valueMatches reports whether a field value contains the lowercased query as
// a substring. Values may be plain strings, slices of primitives, slices of
// label-bearing objects, or a single label-bearing object; nil never matches.
func valueMatches(v any, loweredQuery string) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(strings.ToLower(val), loweredQuery)
	case []any:
		for _, item := range val {
			if valueMatches(item, loweredQuery) {
				return true
			}
		}
		return false
	case map[string]any:
		label, ok := val["label"]
		if !ok {
			return false
		}
		return valueMatches(label, loweredQuery)
	default:
		return strings.Contains(strings.ToLower(fmt.Sprint(val)), loweredQuery)
	}
}

func (h *historyCollection) RemoveLocally(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.records[:0]
	for _, rec := range h.records {
		if rec.RecordID != id {
			kept = append(kept, rec)
		}
	}
	h.records = kept
}

func (h *historyCollection) Refresh(ctx context.Context) error {
	records, err := h.store.List(ctx)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.records = records
	h.mu.Unlock()
	return nil
}

func (h *historyCollection) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}
