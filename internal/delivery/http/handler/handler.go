package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/user/linkcleaner-service/internal/delivery/http/request"
	"github.com/user/linkcleaner-service/internal/delivery/http/response"
	"github.com/user/linkcleaner-service/internal/entity"
	"github.com/user/linkcleaner-service/internal/repository"
	"github.com/user/linkcleaner-service/internal/usecase"
	"github.com/user/linkcleaner-service/pkg/utils"
)

const defaultFailuresLimit = 20

type Handler struct {
	extraction usecase.ExtractionManager
	history    usecase.HistoryCollection
	transient  usecase.TransientManager
	store      repository.RecordStoreRepository
	failures   repository.FailedExtractionRepository

	storeBaseURL string
	storeAppID   string
}

func NewHandler(
	extraction usecase.ExtractionManager,
	history usecase.HistoryCollection,
	transient usecase.TransientManager,
	store repository.RecordStoreRepository,
	failures repository.FailedExtractionRepository,
	storeBaseURL, storeAppID string,
) *Handler {
	return &Handler{
		extraction:   extraction,
		history:      history,
		transient:    transient,
		store:        store,
		failures:     failures,
		storeBaseURL: storeBaseURL,
		storeAppID:   storeAppID,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	var req request.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, rec, err := h.extraction.Extract(r.Context(), req.InputURL)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	resp := response.ExtractResponse{
		Status:       "success",
		InputURL:     result.InputURL,
		ExtractedURL: result.ExtractedURL,
		RecordID:     rec.RecordID,
		RecordURL:    h.recordURL(rec.RecordID),
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) HandleLastResult(w http.ResponseWriter, r *http.Request) {
	result := h.extraction.LastResult()
	if result == nil {
		h.writeJSONError(w, "No extraction has completed yet", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var records []entity.Record
	if query != "" {
		records = h.history.Search(query)
	} else {
		records = h.history.Sorted()
	}

	h.writeJSON(w, http.StatusOK, response.HistoryResponse{
		Total:   h.history.Len(),
		Records: records,
	})
}

func (h *Handler) HandleRefreshHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Refresh(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"total":  h.history.Len(),
	})
}

func (h *Handler) HandleCopy(w http.ResponseWriter, r *http.Request) {
	id := utils.NormalizeRecordID(r.PathValue("id"))
	h.transient.MarkCopied(r.Context(), id)
	h.writeJSON(w, http.StatusOK, response.CopiedResponse{RecordID: id})
}

func (h *Handler) HandleCopied(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, response.CopiedResponse{
		RecordID: h.transient.Copied(r.Context()),
	})
}

func (h *Handler) HandleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	id := utils.NormalizeRecordID(r.PathValue("id"))
	if err := h.transient.RequestDelete(r.Context(), id); err != nil {
		slog.Error("Failed to stage delete", "record_id", id, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.DeleteResponse{Status: "pending", RecordID: id})
}

func (h *Handler) HandleDeleteCancel(w http.ResponseWriter, r *http.Request) {
	h.transient.CancelDelete(r.Context())
	h.writeJSON(w, http.StatusOK, response.DeleteResponse{Status: "cancelled"})
}

func (h *Handler) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, err := h.transient.ConfirmDelete(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.DeleteResponse{Status: "deleted", RecordID: id})
}

func (h *Handler) HandleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Create(r.Context(), entity.RecordFields{
		InputURL:     req.InputURL,
		ExtractedURL: req.ExtractedURL,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.history.Refresh(r.Context()); err != nil {
		slog.Warn("Failed to refresh history after manual create", "error", err)
	}
	h.writeJSON(w, http.StatusCreated, response.RecordResponse{
		Record:    *rec,
		RecordURL: h.recordURL(rec.RecordID),
	})
}

func (h *Handler) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := utils.NormalizeRecordID(r.PathValue("id"))
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.RecordResponse{
		Record:    *rec,
		RecordURL: h.recordURL(rec.RecordID),
	})
}

func (h *Handler) HandleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id := utils.NormalizeRecordID(r.PathValue("id"))

	var req request.UpdateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.store.Update(r.Context(), id, entity.RecordPatch{
		InputURL:     req.InputURL,
		ExtractedURL: req.ExtractedURL,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if err := h.history.Refresh(r.Context()); err != nil {
		slog.Warn("Failed to refresh history after update", "error", err)
	}
	h.writeJSON(w, http.StatusOK, response.RecordResponse{
		Record:    *rec,
		RecordURL: h.recordURL(rec.RecordID),
	})
}

func (h *Handler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := utils.NormalizeRecordID(r.PathValue("id"))
	ok, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if ok {
		h.history.RemoveLocally(id)
	}
	h.writeJSON(w, http.StatusOK, response.DeleteResponse{Status: "deleted", RecordID: id})
}

func (h *Handler) HandleFailures(w http.ResponseWriter, r *http.Request) {
	if h.failures == nil {
		h.writeJSONError(w, "Failure audit is not configured", http.StatusNotFound)
		return
	}

	limit := defaultFailuresLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	failures, err := h.failures.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list extraction failures", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	out := make([]response.FailedExtractionResponse, 0, len(failures))
	for _, f := range failures {
		out = append(out, response.FailedExtractionResponse{
			InputURL:             f.InputURL,
			FailureReason:        f.FailureReason,
			Mode:                 f.Mode,
			LastAttemptTimestamp: f.LastAttemptTimestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
			AttemptCount:         f.AttemptCount,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"failures": out})
}

func (h *Handler) recordURL(id string) string {
	if h.storeAppID == "" {
		return ""
	}
	return utils.RecordURL(h.storeBaseURL, h.storeAppID, id)
}

// writeDomainError maps pipeline errors onto HTTP statuses. Extraction and
// record-store failures surface their messages verbatim.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var extractionErr *repository.ExtractionError
	var remoteErr *repository.RemoteError

	switch {
	case errors.Is(err, usecase.ErrEmptyInput):
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrExtractionInFlight):
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, usecase.ErrNoPendingDelete):
		h.writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, repository.ErrRecordNotFound):
		h.writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &extractionErr):
		h.writeJSONError(w, extractionErr.Message, http.StatusBadGateway)
	case errors.As(err, &remoteErr):
		h.writeJSONError(w, remoteErr.Message, http.StatusBadGateway)
	default:
		slog.Error("Unhandled pipeline error", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
