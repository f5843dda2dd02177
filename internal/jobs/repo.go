package jobs

import (
	"context"
	"errors"
	"time"

	"docstream-backend/internal/shared/storage/db"
)

var (
	// ErrNotFound indicates the job does not exist.
	ErrNotFound = errors.New("job not found")
	// ErrDuplicateUpload indicates a job already exists for the upload.
	ErrDuplicateUpload = errors.New("job already exists for upload")
)

// StatusUpdate carries the fields a status transition may set.
type StatusUpdate struct {
	Status        string
	StartedAt     *time.Time
	CompletedAt   *time.Time
	ErrorCode     *string
	ErrorMessage  *string
	TextractJobID *string
	OCRJsonURL    *string
}

// Repo persists jobs. CreateTx takes an explicit unit of work so the job
// row commits atomically with the upload and document it tracks.
type Repo interface {
	CreateTx(ctx context.Context, tx db.DBTX, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	GetByUploadID(ctx context.Context, uploadID string) (Job, error)
	ApplyStatus(ctx context.Context, jobID string, update StatusUpdate) error
	ListByUser(ctx context.Context, userID string) ([]Job, error)
}
