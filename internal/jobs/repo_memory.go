package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"docstream-backend/internal/shared/storage/db"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	byID     map[string]Job
	byUpload map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:     make(map[string]Job),
		byUpload: make(map[string]string),
	}
}

// CreateTx stores a job, enforcing upload uniqueness. The tx parameter is
// ignored.
func (r *MemoryRepo) CreateTx(ctx context.Context, _ db.DBTX, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUpload[job.UploadID]; exists {
		return ErrDuplicateUpload
	}
	r.byID[job.ID] = job
	r.byUpload[job.UploadID] = job.ID
	return nil
}

// GetByID returns a job by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.byID[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// GetByUploadID returns the job tracking an upload.
func (r *MemoryRepo) GetByUploadID(ctx context.Context, uploadID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUpload[uploadID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return r.byID[id], nil
}

// ApplyStatus writes a status transition and its accompanying fields.
func (r *MemoryRepo) ApplyStatus(ctx context.Context, jobID string, update StatusUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[jobID]
	if !ok {
		return ErrNotFound
	}
	job.Status = update.Status
	if update.StartedAt != nil {
		job.StartedAt = update.StartedAt
	}
	if update.CompletedAt != nil {
		job.CompletedAt = update.CompletedAt
	}
	if update.ErrorCode != nil {
		job.ErrorCode = update.ErrorCode
	}
	if update.ErrorMessage != nil {
		job.ErrorMessage = update.ErrorMessage
	}
	if update.TextractJobID != nil {
		job.TextractJobID = update.TextractJobID
	}
	if update.OCRJsonURL != nil {
		job.OCRJsonURL = update.OCRJsonURL
	}
	job.UpdatedAt = time.Now().UTC()
	r.byID[jobID] = job
	return nil
}

// ListByUser lists a user's jobs, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Job
	for _, job := range r.byID {
		if job.UserID == userID {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
