package workspaces

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"docstream-backend/internal/apperr"
)

// Service contains business logic for workspaces.
type Service struct {
	Repo     Repo
	Resolver *Resolver
}

// Create makes a new workspace for the actor. Ownership follows the
// actor's tenant: company-owned when they belong to a company, otherwise
// user-owned. The creator is recorded separately and is always a user.
func (s *Service) Create(ctx context.Context, actorID, name string) (Workspace, error) {
	const op = "workspaces.create"

	name = strings.TrimSpace(name)
	if name == "" {
		return Workspace{}, apperr.E(apperr.Validation, "NAME_REQUIRED", op, "workspace name is required",
			apperr.WithActor(actorID))
	}

	actor, err := s.Resolver.Users.GetByID(ctx, actorID)
	if err != nil {
		return Workspace{}, apperr.E(apperr.Forbidden, "INVALID_PRINCIPAL", op, "unknown principal",
			apperr.WithActor(actorID), apperr.WithCause(err))
	}

	ws := Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     s.Resolver.ResolveOwner(actor),
		CreatorID: actor.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, ws); err != nil {
		return Workspace{}, apperr.E(apperr.FatalInternal, "WORKSPACE_CREATE_FAILED", op, "failed to create workspace", apperr.WithCause(err))
	}
	return ws, nil
}

// Get returns a workspace after an access check against the actor.
func (s *Service) Get(ctx context.Context, actorID, workspaceID string) (Workspace, error) {
	if err := s.Resolver.CanAccessWorkspace(ctx, actorID, workspaceID); err != nil {
		return Workspace{}, err
	}
	ws, err := s.Repo.GetByID(ctx, workspaceID)
	if err != nil {
		return Workspace{}, apperr.E(apperr.FatalInternal, "WORKSPACE_LOOKUP_FAILED", "workspaces.get", "failed to look up workspace", apperr.WithCause(err))
	}
	return ws, nil
}

// List returns all workspaces accessible to the actor.
func (s *Service) List(ctx context.Context, actorID string) ([]Workspace, error) {
	const op = "workspaces.list"
	actor, err := s.Resolver.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperr.E(apperr.Forbidden, "INVALID_PRINCIPAL", op, "unknown principal",
			apperr.WithActor(actorID), apperr.WithCause(err))
	}
	out, err := s.Repo.ListAccessible(ctx, actor.ID, actor.CompanyID)
	if err != nil {
		return nil, apperr.E(apperr.FatalInternal, "WORKSPACE_LIST_FAILED", op, "failed to list workspaces", apperr.WithCause(err))
	}
	return out, nil
}
