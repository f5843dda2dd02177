package documents

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
	byID  map[string]Document
	links map[string]map[string]struct{} // workspaceID -> documentIDs
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Document),
		links: make(map[string]map[string]struct{}),
	}
}

// CreateTx stores a document. The tx parameter is ignored.
func (r *MemoryRepo) CreateTx(ctx context.Context, _ db.DBTX, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[doc.ID] = doc
	return nil
}

// LinkWorkspaceTx shares a document into a workspace. Idempotent.
func (r *MemoryRepo) LinkWorkspaceTx(ctx context.Context, _ db.DBTX, link WorkspaceLink) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs, ok := r.links[link.WorkspaceID]
	if !ok {
		docs = make(map[string]struct{})
		r.links[link.WorkspaceID] = docs
	}
	docs[link.DocumentID] = struct{}{}
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// UpdateStatus sets a document's status.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, documentID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[documentID]
	if !ok {
		return ErrNotFound
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	r.byID[documentID] = doc
	return nil
}

// ListByUser lists a user's documents, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, doc := range r.byID {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListByWorkspace lists documents shared into a workspace, newest first.
func (r *MemoryRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for id := range r.links[workspaceID] {
		if doc, ok := r.byID[id]; ok {
			out = append(out, doc)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
}

var _ Repo = (*MemoryRepo)(nil)
