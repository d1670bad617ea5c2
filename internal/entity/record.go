package entity

// RecordFields holds the user-editable field bag of a record. Both fields are
// optional on reads; records created through the extraction pipeline always
// carry both, and ExtractedURL is never empty after a successful create.
type RecordFields struct {
	InputURL     string `json:"input_url,omitempty"`
	ExtractedURL string `json:"extracted_url,omitempty"`
}

// RecordPatch is a partial update of RecordFields. Nil fields are left
// untouched by the store.
type RecordPatch struct {
	InputURL     *string `json:"input_url,omitempty"`
	ExtractedURL *string `json:"extracted_url,omitempty"`
}

// Record is one persisted input/extracted URL pair plus store-assigned
// metadata. RecordID and CreatedAt are assigned by the record store and are
// immutable after creation. CreatedAt is an ISO-8601 string, so plain string
// comparison yields chronological order.
type Record struct {
	RecordID  string       `json:"record_id"`
	CreatedAt string       `json:"createdat"`
	UpdatedAt *string      `json:"updatedat,omitempty"`
	Fields    RecordFields `json:"fields"`
}

// FieldValues returns the record's field values for search matching. Absent
// fields are omitted so they can never match a query.
func (r Record) FieldValues() []any {
	vals := make([]any, 0, 2)
	if r.Fields.InputURL != "" {
		vals = append(vals, r.Fields.InputURL)
	}
	if r.Fields.ExtractedURL != "" {
		vals = append(vals, r.Fields.ExtractedURL)
	}
	return vals
}
