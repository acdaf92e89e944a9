package models

import "time"

// StatusKind is the ordered progression of an upload's lifecycle.
// StatusCompleted and StatusError are terminal.
type StatusKind string

const (
	StatusPending        StatusKind = "pending"
	StatusReceived       StatusKind = "received"
	StatusProcessing     StatusKind = "processing"
	StatusSongsConfirmed StatusKind = "songs_confirmed"
	StatusCompleted      StatusKind = "completed"
	StatusError          StatusKind = "error"
)

// Terminal reports whether no further status transition may occur.
func (s StatusKind) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// UploadStatusRecord describes upload progress for one upload id. Each phase
// transition overwrites the record; the final write is the terminal record.
// The detail map is additive: later writes carry forward earlier keys unless
// a key is explicitly superseded.
type UploadStatusRecord struct {
	Status    StatusKind     `json:"status"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// DestinationResult is the outcome of one destination's upload protocol for
// one upload. Recoverable signals that a future manual re-run may succeed,
// not that the failure was retried automatically. Unselected destinations
// are recorded with Skipped set rather than omitted.
type DestinationResult struct {
	Success     bool   `json:"success"`
	ID          string `json:"id,omitempty"`
	URL         string `json:"url,omitempty"`
	Error       string `json:"error,omitempty"`
	Recoverable bool   `json:"recoverable,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
	Note        string `json:"note,omitempty"`
}

// SkippedResult is the record written for a known destination that was not
// selected for this upload.
func SkippedResult() DestinationResult {
	return DestinationResult{Success: true, Skipped: true, Note: "destination not selected"}
}
