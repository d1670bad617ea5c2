package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/linkcleaner-service/internal/entity"
)

func record(id, createdAt, input, extracted string) entity.Record {
	return entity.Record{
		RecordID:  id,
		CreatedAt: createdAt,
		Fields: entity.RecordFields{
			InputURL:     input,
			ExtractedURL: extracted,
		},
	}
}

func recordIDs(records []entity.Record) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.RecordID
	}
	return ids
}

func loadedHistory(t *testing.T, records ...entity.Record) HistoryCollection {
	t.Helper()
	store := &fakeRecordStore{records: records}
	history := NewHistoryCollection(store)
	require.NoError(t, history.Refresh(context.Background()))
	return history
}

func TestSorted_NewestFirst(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-10T08:00:00Z", "https://a.example", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-03-02T12:30:00Z", "https://b.example", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa3", "2024-02-15T09:00:00Z", "https://c.example", ""),
	)

	got := recordIDs(history.Sorted())
	assert.Equal(t, []string{
		"aaaaaaaaaaaaaaaaaaaaaaa2",
		"aaaaaaaaaaaaaaaaaaaaaaa3",
		"aaaaaaaaaaaaaaaaaaaaaaa1",
	}, got)
}

func TestSorted_EqualTimestampsKeepRetrievalOrder(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-05-01T00:00:00Z", "", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-05-01T00:00:00Z", "", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa3", "2024-05-01T00:00:00Z", "", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa4", "2024-06-01T00:00:00Z", "", ""),
	)

	got := recordIDs(history.Sorted())
	assert.Equal(t, []string{
		"aaaaaaaaaaaaaaaaaaaaaaa4",
		"aaaaaaaaaaaaaaaaaaaaaaa1",
		"aaaaaaaaaaaaaaaaaaaaaaa2",
		"aaaaaaaaaaaaaaaaaaaaaaa3",
	}, got)
}

func TestSorted_DoesNotMutateCollection(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-02-01T00:00:00Z", "", ""),
	)

	first := recordIDs(history.Sorted())
	second := recordIDs(history.Sorted())
	assert.Equal(t, first, second)
}

func TestSearch_CaseInsensitive(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://News.Example.com/article", "https://news.example.com/article"),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-02-01T00:00:00Z", "https://shop.example.com", "https://shop.example.com"),
	)

	for _, query := range []string{"NEWS", "news", "NeWs"} {
		got := recordIDs(history.Search(query))
		assert.Equal(t, []string{"aaaaaaaaaaaaaaaaaaaaaaa1"}, got, "query %q", query)
	}
}

func TestSearch_MatchesAnyField(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://t.co/xyz", "https://blog.example.com/post"),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-02-01T00:00:00Z", "https://other.example", "https://other.example"),
	)

	// "blog" only appears in the extracted field of the first record.
	got := recordIDs(history.Search("blog"))
	assert.Equal(t, []string{"aaaaaaaaaaaaaaaaaaaaaaa1"}, got)
}

func TestSearch_EmptyQueryReturnsEverything(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://a.example", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-02-01T00:00:00Z", "https://b.example", ""),
	)

	assert.Len(t, history.Search(""), 2)
}

func TestSearch_NoMatch(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://a.example", ""),
	)

	assert.Empty(t, history.Search("zzz-not-there"))
}

func TestValueMatches(t *testing.T) {
	tests := []struct {
		name  string
		value any
		query string
		want  bool
	}{
		{"nil never matches", nil, "anything", false},
		{"string substring", "https://Example.com/Page", "example.com", true},
		{"string miss", "https://example.com", "other", false},
		{"slice of strings", []any{"alpha", "beta"}, "bet", true},
		{"slice miss", []any{"alpha", "beta"}, "gamma", false},
		{"labeled object", map[string]any{"label": "Tech News", "key": "tech"}, "news", true},
		{"object without label", map[string]any{"key": "tech"}, "tech", false},
		{"slice of labeled objects", []any{map[string]any{"label": "Sports"}}, "sport", true},
		{"numeric value", 42, "42", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valueMatches(tt.value, tt.query))
		})
	}
}

func TestRemoveLocally(t *testing.T) {
	history := loadedHistory(t,
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://a.example", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-02-01T00:00:00Z", "https://b.example", ""),
	)

	history.RemoveLocally("aaaaaaaaaaaaaaaaaaaaaaa1")
	assert.Equal(t, 1, history.Len())
	assert.Equal(t, []string{"aaaaaaaaaaaaaaaaaaaaaaa2"}, recordIDs(history.Sorted()))

	// Removing an unknown id is a no-op.
	history.RemoveLocally("ffffffffffffffffffffffff")
	assert.Equal(t, 1, history.Len())
}

func TestRefresh_ReplacesCollection(t *testing.T) {
	store := &fakeRecordStore{records: []entity.Record{
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://a.example", ""),
	}}
	history := NewHistoryCollection(store)
	require.NoError(t, history.Refresh(context.Background()))
	assert.Equal(t, 1, history.Len())

	store.records = []entity.Record{
		record("aaaaaaaaaaaaaaaaaaaaaaa2", "2024-02-01T00:00:00Z", "https://b.example", ""),
		record("aaaaaaaaaaaaaaaaaaaaaaa3", "2024-03-01T00:00:00Z", "https://c.example", ""),
	}
	require.NoError(t, history.Refresh(context.Background()))
	assert.Equal(t, 2, history.Len())
	assert.NotContains(t, recordIDs(history.Sorted()), "aaaaaaaaaaaaaaaaaaaaaaa1")
}

func TestRefresh_FailureKeepsExistingView(t *testing.T) {
	store := &fakeRecordStore{records: []entity.Record{
		record("aaaaaaaaaaaaaaaaaaaaaaa1", "2024-01-01T00:00:00Z", "https://a.example", ""),
	}}
	history := NewHistoryCollection(store)
	require.NoError(t, history.Refresh(context.Background()))

	store.listErr = errors.New("store unavailable")
	err := history.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, history.Len())
}
