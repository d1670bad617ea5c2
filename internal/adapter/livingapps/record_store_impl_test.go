package livingapps

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/linkcleaner-service/internal/entity"
	"github.com/user/linkcleaner-service/internal/repository"
	"github.com/user/linkcleaner-service/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

const (
	testAppID   = "5ffd1a0e9db4b70c5ed9ff02"
	testSession = "session-token-xyz"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) *RecordStoreImpl {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRecordStore(srv.URL, testAppID, testSession)
}

func TestList_PreservesDocumentOrder(t *testing.T) {
	// Keys deliberately not in lexical order; the client must keep the
	// document order the server sent.
	body := `{
		"ccccccccccccccccccccccc3": {"createdat": "2024-03-01T00:00:00Z", "fields": {"input_url": "https://c.example"}},
		"aaaaaaaaaaaaaaaaaaaaaaa1": {"createdat": "2024-01-01T00:00:00Z", "fields": {"input_url": "https://a.example"}},
		"bbbbbbbbbbbbbbbbbbbbbbb2": {"createdat": "2024-02-01T00:00:00Z", "fields": {"input_url": "https://b.example"}}
	}`
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/apps/"+testAppID+"/records", r.URL.Path)
		io.WriteString(w, body)
	})

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "ccccccccccccccccccccccc3", records[0].RecordID)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaa1", records[1].RecordID)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbb2", records[2].RecordID)
	assert.Equal(t, "https://a.example", records[1].Fields.InputURL)
}

func TestList_EmptyMapping(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestList_AttachesSessionCookie(t *testing.T) {
	var gotCookie string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(sessionCookieName); err == nil {
			gotCookie = c.Value
		}
		io.WriteString(w, `{}`)
	})

	_, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testSession, gotCookie)
}

func TestList_RemoteErrorCarriesRawBody(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error": "session expired"}`)
	})

	_, err := store.List(context.Background())
	require.Error(t, err)

	var remoteErr *repository.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, `{"error": "session expired"}`, remoteErr.Message)
}

func TestGet_NotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "no such record"}`)
	})

	_, err := store.Get(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaa1")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestGet_DecodesSingleRecord(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/"+testAppID+"/records/aaaaaaaaaaaaaaaaaaaaaaa1", r.URL.Path)
		io.WriteString(w, `{
			"id": "aaaaaaaaaaaaaaaaaaaaaaa1",
			"createdat": "2024-01-01T00:00:00Z",
			"updatedat": "2024-01-02T00:00:00Z",
			"fields": {"input_url": "https://a.example?utm_source=x", "extracted_url": "https://a.example"}
		}`)
	})

	rec, err := store.Get(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaa1")
	require.NoError(t, err)
	assert.Equal(t, "aaaaaaaaaaaaaaaaaaaaaaa1", rec.RecordID)
	assert.Equal(t, "https://a.example", rec.Fields.ExtractedURL)
	require.NotNil(t, rec.UpdatedAt)
	assert.Equal(t, "2024-01-02T00:00:00Z", *rec.UpdatedAt)
}

func TestCreate_WireShape(t *testing.T) {
	var gotBody map[string]map[string]string
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{
			"id": "ddddddddddddddddddddddd4",
			"createdat": "2024-04-01T00:00:00Z",
			"fields": {"input_url": "https://d.example?gclid=1", "extracted_url": "https://d.example"}
		}`)
	})

	rec, err := store.Create(context.Background(), entity.RecordFields{
		InputURL:     "https://d.example?gclid=1",
		ExtractedURL: "https://d.example",
	})
	require.NoError(t, err)

	// The payload nests the fields under a "fields" key.
	assert.Equal(t, "https://d.example?gclid=1", gotBody["fields"]["input_url"])
	assert.Equal(t, "https://d.example", gotBody["fields"]["extracted_url"])
	assert.Equal(t, "ddddddddddddddddddddddd4", rec.RecordID)
}

func TestUpdate_SendsOnlyPatchedFields(t *testing.T) {
	var gotBody map[string]map[string]any
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, `{
			"id": "aaaaaaaaaaaaaaaaaaaaaaa1",
			"createdat": "2024-01-01T00:00:00Z",
			"fields": {"input_url": "https://a.example", "extracted_url": "https://patched.example"}
		}`)
	})

	extracted := "https://patched.example"
	rec, err := store.Update(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaa1", entity.RecordPatch{
		ExtractedURL: &extracted,
	})
	require.NoError(t, err)

	fields := gotBody["fields"]
	assert.Equal(t, "https://patched.example", fields["extracted_url"])
	_, hasInput := fields["input_url"]
	assert.False(t, hasInput, "unpatched fields must not be sent")
	assert.Equal(t, "https://patched.example", rec.Fields.ExtractedURL)
}

func TestUpdate_NotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	extracted := "https://x.example"
	_, err := store.Update(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaa1", entity.RecordPatch{ExtractedURL: &extracted})
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestDelete_EmptyBodyIsSuccess(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})

	ok, err := store.Delete(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaa1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete_RemoteFailure(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "backend unavailable")
	})

	ok, err := store.Delete(context.Background(), "aaaaaaaaaaaaaaaaaaaaaaa1")
	require.Error(t, err)
	assert.False(t, ok)

	var remoteErr *repository.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "backend unavailable", remoteErr.Message)
}

func TestDecodeKeyedRecords_RejectsNonMapping(t *testing.T) {
	_, err := decodeKeyedRecords[entity.RecordFields]([]byte(`[1, 2, 3]`))
	assert.Error(t, err)
}
