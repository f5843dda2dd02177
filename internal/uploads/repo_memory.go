package uploads

import (
	"context"
	"sort"
	"sync"
	"time"

	"docstream-backend/internal/shared/storage/db"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Upload
	byKey map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Upload),
		byKey: make(map[string]string),
	}
}

// CreateTx stores an upload, enforcing key uniqueness. The tx parameter is
// ignored; the memory repo has no transaction scope.
func (r *MemoryRepo) CreateTx(ctx context.Context, _ db.DBTX, upload Upload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byKey[upload.Key]; exists {
		return ErrDuplicateKey
	}
	r.byID[upload.ID] = upload
	r.byKey[upload.Key] = upload.ID
	return nil
}

// GetByID returns an upload by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, uploadID string) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	upload, ok := r.byID[uploadID]
	if !ok {
		return Upload{}, ErrNotFound
	}
	return upload, nil
}

// GetByKey returns an upload by its object-store key.
func (r *MemoryRepo) GetByKey(ctx context.Context, key string) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byKey[key]
	if !ok {
		return Upload{}, ErrNotFound
	}
	return r.byID[id], nil
}

// UpdateStatus sets an upload's status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, uploadID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	upload, ok := r.byID[uploadID]
	if !ok {
		return ErrNotFound
	}
	upload.Status = status
	upload.UpdatedAt = time.Now().UTC()
	r.byID[uploadID] = upload
	return nil
}

// ListByUser lists a user's uploads, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Upload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Upload
	for _, upload := range r.byID {
		if upload.UserID == userID {
			out = append(out, upload)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
