package response

import "github.com/user/linkcleaner-service/internal/entity"

// ExtractResponse reports one completed extraction.
type ExtractResponse struct {
	Status       string `json:"status"`
	InputURL     string `json:"input_url"`
	ExtractedURL string `json:"extracted_url"`
	RecordID     string `json:"record_id"`
	RecordURL    string `json:"record_url,omitempty"`
}

// HistoryResponse carries the (optionally searched) history snapshot. Total is
// the full collection size, independent of the search filter.
type HistoryResponse struct {
	Total   int             `json:"total"`
	Records []entity.Record `json:"records"`
}

// RecordResponse wraps a single record for the manual CRUD surface.
type RecordResponse struct {
	Record    entity.Record `json:"record"`
	RecordURL string        `json:"record_url,omitempty"`
}

// CopiedResponse reports the current copy acknowledgment; RecordID is empty
// once the acknowledgment has expired.
type CopiedResponse struct {
	RecordID string `json:"record_id"`
}

// DeleteResponse reports the outcome of a delete-confirmation step.
type DeleteResponse struct {
	Status   string `json:"status"`
	RecordID string `json:"record_id,omitempty"`
}

// FailedExtractionResponse is one row of the failure audit trail.
type FailedExtractionResponse struct {
	InputURL             string `json:"input_url"`
	FailureReason        string `json:"failure_reason"`
	Mode                 string `json:"mode"`
	LastAttemptTimestamp string `json:"last_attempt_timestamp"`
	AttemptCount         int    `json:"attempt_count"`
}
