package workspaces

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[string]Workspace
	members map[string]map[string]Member // workspaceId -> userId -> member
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:    make(map[string]Workspace),
		members: make(map[string]map[string]Member),
	}
}

// Create stores a workspace.
func (r *MemoryRepo) Create(ctx context.Context, ws Workspace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[ws.ID] = ws
	return nil
}

// GetByID returns a workspace by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, workspaceID string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.byID[workspaceID]
	if !ok {
		return Workspace{}, ErrNotFound
	}
	return ws, nil
}

// ListAccessible returns workspaces owned by or shared with the user, newest first.
func (r *MemoryRepo) ListAccessible(ctx context.Context, userID string, companyID *string) ([]Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Workspace
	for _, ws := range r.byID {
		if ws.Owner.GrantsAccess(userID, companyID) {
			out = append(out, ws)
			continue
		}
		if members, ok := r.members[ws.ID]; ok {
			if _, isMember := members[userID]; isMember {
				out = append(out, ws)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// AddMember stores a membership, silently skipping duplicates.
func (r *MemoryRepo) AddMember(ctx context.Context, member Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[member.WorkspaceID] == nil {
		r.members[member.WorkspaceID] = make(map[string]Member)
	}
	if _, exists := r.members[member.WorkspaceID][member.UserID]; exists {
		return nil
	}
	r.members[member.WorkspaceID][member.UserID] = member
	return nil
}

// RemoveMembers removes the given users from a workspace.
func (r *MemoryRepo) RemoveMembers(ctx context.Context, workspaceID string, userIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[workspaceID]
	if !ok {
		return nil
	}
	for _, id := range userIDs {
		delete(members, id)
	}
	return nil
}

// GetMember returns a single membership pair.
func (r *MemoryRepo) GetMember(ctx context.Context, workspaceID, userID string) (Member, error) {
	if err := ctx.Err(); err != nil {
		return Member{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[workspaceID][userID]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	return member, nil
}

// ListMembers returns all members of a workspace, oldest first.
func (r *MemoryRepo) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Member
	for _, member := range r.members[workspaceID] {
		out = append(out, member)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CountMembers returns the number of members in a workspace.
func (r *MemoryRepo) CountMembers(ctx context.Context, workspaceID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[workspaceID]), nil
}

var _ Repo = (*MemoryRepo)(nil)
