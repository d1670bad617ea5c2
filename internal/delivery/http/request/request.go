package request

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	InputURL string `json:"input_url"`
}

// CreateRecordRequest is the body of POST /api/records (manual entry). Either
// field may be omitted; the extraction pipeline is not involved.
type CreateRecordRequest struct {
	InputURL     string `json:"input_url"`
	ExtractedURL string `json:"extracted_url"`
}

// UpdateRecordRequest is the body of PATCH /api/records/{id}. Nil fields are
// left untouched.
type UpdateRecordRequest struct {
	InputURL     *string `json:"input_url"`
	ExtractedURL *string `json:"extracted_url"`
}
