package repository

import "context"

// ExtractionError is a failed extractor invocation: network error, timeout, or
// output that cannot be parsed against the declared shape. The message is
// surfaced to the caller verbatim.
type ExtractionError struct {
	Message string
}

func (e *ExtractionError) Error() string {
	return e.Message
}

// LinkExtractor defines the contract for recovering the clean destination URL
// from a possibly-wrapped or tracking-laden input URL. Implementations make a
// single attempt per call; retry policy, if any, belongs to the caller.
type LinkExtractor interface {
	// ExtractOriginalLink returns the destination URL for rawURL. The result
	// may be empty when the extractor produced nothing usable; the caller is
	// responsible for the fallback policy.
	ExtractOriginalLink(ctx context.Context, rawURL string) (string, error)
}
