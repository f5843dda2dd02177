package workspaces

import (
	"context"
	"errors"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/users"
)

// Resolver decides whether a principal may act on a workspace, given role
// and ownership model. It never retries; every failure is a terminal
// classification surfaced synchronously to the caller.
type Resolver struct {
	Workspaces Repo
	Users      users.Repo
}

// CanAccessWorkspace returns nil when the actor may access the workspace.
// ADMIN role always passes. A missing workspace is NotFound; a missing
// actor record (stale token) is Forbidden, since it indicates an invalid
// principal rather than a missing resource.
func (r *Resolver) CanAccessWorkspace(ctx context.Context, actorID, workspaceID string) error {
	const op = "workspaces.can_access"

	actor, err := r.Users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return apperr.E(apperr.Forbidden, "INVALID_PRINCIPAL", op, "unknown principal",
				apperr.WithActor(actorID))
		}
		return apperr.E(apperr.FatalInternal, "USER_LOOKUP_FAILED", op, "failed to look up actor", apperr.WithCause(err))
	}

	if actor.Role == users.RoleAdmin {
		return nil
	}

	ws, err := r.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.E(apperr.NotFound, "WORKSPACE_NOT_FOUND", op, "workspace not found",
				apperr.WithActor(actorID),
				apperr.WithContext("workspace_id", workspaceID))
		}
		return apperr.E(apperr.FatalInternal, "WORKSPACE_LOOKUP_FAILED", op, "failed to look up workspace", apperr.WithCause(err))
	}

	if !ws.Owner.GrantsAccess(actor.ID, actor.CompanyID) {
		return apperr.E(apperr.Forbidden, "WORKSPACE_ACCESS_DENIED", op, "no access to workspace",
			apperr.WithActor(actorID),
			apperr.WithTenant(actor.Tenant()),
			apperr.WithContext("workspace_id", workspaceID))
	}
	return nil
}

// ResolveOwner returns the owner a new workspace should carry for the
// given creator: their company when they belong to one, themselves otherwise.
func (r *Resolver) ResolveOwner(creator users.User) Owner {
	if creator.CompanyID != nil && *creator.CompanyID != "" {
		return CompanyOwner(*creator.CompanyID)
	}
	return UserOwner(creator.ID)
}
