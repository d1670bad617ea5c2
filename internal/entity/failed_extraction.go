package entity

import "time"

// FailedExtraction mirrors the `failed_extractions` PostgreSQL table schema.
// One row per input URL; AttemptCount grows when the same input fails again.
type FailedExtraction struct {
	ID                   int64
	InputURL             string
	FailureReason        string
	Mode                 string // "llm" or "browser"
	LastAttemptTimestamp time.Time
	AttemptCount         int
}
