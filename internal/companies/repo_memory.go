package companies

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Company
	byName map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Company),
		byName: make(map[string]string),
	}
}

// Create stores a company, enforcing name uniqueness.
func (r *MemoryRepo) Create(ctx context.Context, company Company) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[company.Name]; exists {
		return ErrDuplicateName
	}
	r.byID[company.ID] = company
	r.byName[company.Name] = company.ID
	return nil
}

// GetByID returns a company by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, companyID string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.byID[companyID]
	if !ok {
		return Company{}, ErrNotFound
	}
	return company, nil
}

var _ Repo = (*MemoryRepo)(nil)
