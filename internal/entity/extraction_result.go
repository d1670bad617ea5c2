package entity

// ExtractionResult is the ephemeral outcome of a single extraction. It is
// held only to render the most recent extraction before it is folded into the
// history; it is never persisted as-is.
type ExtractionResult struct {
	InputURL     string `json:"input_url"`
	ExtractedURL string `json:"extracted_url"`
}
