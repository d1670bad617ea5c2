package livingapps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/user/linkcleaner-service/internal/entity"
	"github.com/user/linkcleaner-service/internal/repository"
	"github.com/user/linkcleaner-service/pkg/metrics"
)

const (
	requestTimeout    = 15 * time.Second
	sessionCookieName = "la_session"
)

// wireRecord is the store's record body. List responses do not embed the id;
// single-record responses carry it in the "id" field.
type wireRecord[F any] struct {
	ID        string  `json:"id"`
	CreatedAt string  `json:"createdat"`
	UpdatedAt *string `json:"updatedat"`
	Fields    F       `json:"fields"`
}

// keyedRecord pairs a list-response map key with its decoded body.
type keyedRecord[F any] struct {
	ID     string
	Record wireRecord[F]
}

// collection is a generic typed CRUD client over one record-store collection,
// parameterized by the fields type F, the patch type P, and the app id in the
// endpoint path. Every operation is one round-trip; there is no batching and
// no retry.
type collection[F, P any] struct {
	baseURL string
	appID   string
	session string
	client  *http.Client
}

func newCollection[F, P any](baseURL, appID, sessionToken string) *collection[F, P] {
	return &collection[F, P]{
		baseURL: baseURL,
		appID:   appID,
		session: sessionToken,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// do executes one round-trip and returns the raw body and status code. A
// non-2xx status is reported as a RemoteError carrying the raw body.
func (c *collection[F, P]) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != "" {
		// Ambient session credential, attached to every request.
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.session})
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, resp.StatusCode, &repository.RemoteError{Message: string(raw)}
	}
	return raw, resp.StatusCode, nil
}

func (c *collection[F, P]) recordsPath() string {
	return "/apps/" + c.appID + "/records"
}

// list retrieves the keyed record mapping and re-attaches each map key as the
// record id, preserving the store's document order.
func (c *collection[F, P]) list(ctx context.Context) ([]keyedRecord[F], error) {
	raw, _, err := c.do(ctx, http.MethodGet, c.recordsPath(), nil)
	if err != nil {
		return nil, err
	}
	return decodeKeyedRecords[F](raw)
}

func (c *collection[F, P]) get(ctx context.Context, id string) (*wireRecord[F], error) {
	raw, status, err := c.do(ctx, http.MethodGet, c.recordsPath()+"/"+id, nil)
	if err != nil {
		if status == http.StatusNotFound {
			return nil, repository.ErrRecordNotFound
		}
		return nil, err
	}
	var rec wireRecord[F]
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

func (c *collection[F, P]) create(ctx context.Context, fields F) (*wireRecord[F], error) {
	raw, _, err := c.do(ctx, http.MethodPost, c.recordsPath(), map[string]any{"fields": fields})
	if err != nil {
		return nil, err
	}
	var rec wireRecord[F]
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode created record: %w", err)
	}
	return &rec, nil
}

func (c *collection[F, P]) update(ctx context.Context, id string, patch P) (*wireRecord[F], error) {
	raw, status, err := c.do(ctx, http.MethodPatch, c.recordsPath()+"/"+id, map[string]any{"fields": patch})
	if err != nil {
		if status == http.StatusNotFound {
			return nil, repository.ErrRecordNotFound
		}
		return nil, err
	}
	var rec wireRecord[F]
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode updated record: %w", err)
	}
	return &rec, nil
}

// del reports true on any 2xx response, including an empty body; the store
// often acknowledges deletions with no payload.
func (c *collection[F, P]) del(ctx context.Context, id string) (bool, error) {
	_, _, err := c.do(ctx, http.MethodDelete, c.recordsPath()+"/"+id, nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

// decodeKeyedRecords deserializes a keyed JSON mapping into a sequence,
// injecting each key as the record identifier. The token-level walk preserves
// the order the store sent, which map decoding would lose.
func decodeKeyedRecords[F any](data []byte) ([]keyedRecord[F], error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to decode record mapping: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected keyed record mapping, got %v", tok)
	}

	records := []keyedRecord[F]{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string record key, got %v", keyTok)
		}

		var body wireRecord[F]
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", key, err)
		}
		records = append(records, keyedRecord[F]{ID: key, Record: body})
	}
	return records, nil
}

// RecordStoreImpl provides a concrete implementation of the
// RecordStoreRepository interface backed by a LivingApps-style REST API.
type RecordStoreImpl struct {
	col *collection[entity.RecordFields, entity.RecordPatch]
}

// NewRecordStore creates a record store client for one app collection. The
// session token is attached as a cookie on every request.
func NewRecordStore(baseURL, appID, sessionToken string) *RecordStoreImpl {
	return &RecordStoreImpl{
		col: newCollection[entity.RecordFields, entity.RecordPatch](baseURL, appID, sessionToken),
	}
}

func (r *RecordStoreImpl) toEntity(id string, rec wireRecord[entity.RecordFields]) entity.Record {
	return entity.Record{
		RecordID:  id,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Fields:    rec.Fields,
	}
}

// List retrieves the full collection in the store's retrieval order.
func (r *RecordStoreImpl) List(ctx context.Context) ([]entity.Record, error) {
	keyed, err := r.col.list(ctx)
	r.observe("list", err)
	if err != nil {
		return nil, err
	}

	records := make([]entity.Record, 0, len(keyed))
	for _, k := range keyed {
		records = append(records, r.toEntity(k.ID, k.Record))
	}
	return records, nil
}

// Get retrieves one record by id.
func (r *RecordStoreImpl) Get(ctx context.Context, id string) (*entity.Record, error) {
	rec, err := r.col.get(ctx, id)
	r.observe("get", err)
	if err != nil {
		return nil, err
	}
	out := r.toEntity(rec.ID, *rec)
	return &out, nil
}

// Create persists a new record and returns it with store-assigned metadata.
func (r *RecordStoreImpl) Create(ctx context.Context, fields entity.RecordFields) (*entity.Record, error) {
	rec, err := r.col.create(ctx, fields)
	r.observe("create", err)
	if err != nil {
		return nil, err
	}
	out := r.toEntity(rec.ID, *rec)
	return &out, nil
}

// Update applies a partial field update and returns the updated record.
func (r *RecordStoreImpl) Update(ctx context.Context, id string, patch entity.RecordPatch) (*entity.Record, error) {
	rec, err := r.col.update(ctx, id, patch)
	r.observe("update", err)
	if err != nil {
		return nil, err
	}
	out := r.toEntity(rec.ID, *rec)
	return &out, nil
}

// Delete removes a record from the store.
func (r *RecordStoreImpl) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.col.del(ctx, id)
	r.observe("delete", err)
	return ok, err
}

func (r *RecordStoreImpl) observe(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.StoreRequestsTotal.WithLabelValues(operation, status).Inc()
}

var _ repository.RecordStoreRepository = (*RecordStoreImpl)(nil)
