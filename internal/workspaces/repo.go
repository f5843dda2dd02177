package workspaces

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("workspace not found")
	ErrMemberNotFound = errors.New("workspace member not found")
)

// Repo defines persistence operations for workspaces and their members.
type Repo interface {
	Create(ctx context.Context, ws Workspace) error
	GetByID(ctx context.Context, workspaceID string) (Workspace, error)
	ListAccessible(ctx context.Context, userID string, companyID *string) ([]Workspace, error)

	AddMember(ctx context.Context, member Member) error
	RemoveMembers(ctx context.Context, workspaceID string, userIDs []string) error
	GetMember(ctx context.Context, workspaceID, userID string) (Member, error)
	ListMembers(ctx context.Context, workspaceID string) ([]Member, error)
	CountMembers(ctx context.Context, workspaceID string) (int, error)
}
