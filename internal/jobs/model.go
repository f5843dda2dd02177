package jobs

import "time"

// Job statuses. Completion only ever creates pending jobs (or fails one
// via the dispatch degradation path); the OCR consumer drives the rest.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// TypeUploadProcessing is the job type produced by upload completion.
const TypeUploadProcessing = "UPLOAD_PROCESSING"

// ErrCodeDispatchFailed marks a job failed because its queue message
// could not be sent after the database records were committed.
const ErrCodeDispatchFailed = "SQS_SEND_FAILED"

// Job tracks asynchronous processing of one upload. UploadID is unique:
// at most one job exists per upload, enforced by the database.
type Job struct {
	ID            string
	Type          string
	Status        string
	UploadID      string
	UserID        string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	ErrorCode     *string
	ErrorMessage  *string
	TextractJobID *string
	OCRJsonURL    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
