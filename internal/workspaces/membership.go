package workspaces

import (
	"context"
	"errors"
	"time"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/users"
)

// MembershipService manages workspace membership. Only the workspace
// creator may add or remove members; every proposed member must share the
// creator's company. A solo creator (no company) cannot add anyone.
type MembershipService struct {
	Workspaces Repo
	Users      users.Repo
}

// AddMembers adds the given users as VIEWER members. The batch is
// all-or-nothing: one invalid or cross-company user rejects the entire
// call, naming the offending IDs. Existing members are skipped silently.
func (s *MembershipService) AddMembers(ctx context.Context, workspaceID string, userIDs []string, actorID string) error {
	const op = "workspaces.add_members"

	ws, creator, err := s.loadForManage(ctx, op, workspaceID, actorID)
	if err != nil {
		return err
	}

	if len(userIDs) == 0 {
		return apperr.E(apperr.Validation, "NO_MEMBERS_GIVEN", op, "at least one user id is required",
			apperr.WithActor(actorID))
	}
	if creator.CompanyID == nil || *creator.CompanyID == "" {
		return apperr.E(apperr.Forbidden, "SOLO_WORKSPACE", op, "solo workspaces cannot gain additional members",
			apperr.WithActor(actorID),
			apperr.WithTenant(creator.Tenant()),
			apperr.WithContext("workspace_id", workspaceID))
	}

	var rejected []string
	candidates := make([]users.User, 0, len(userIDs))
	for _, id := range userIDs {
		candidate, err := s.Users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				rejected = append(rejected, id)
				continue
			}
			return apperr.E(apperr.FatalInternal, "USER_LOOKUP_FAILED", op, "failed to look up proposed member", apperr.WithCause(err))
		}
		if candidate.CompanyID == nil || *candidate.CompanyID != *creator.CompanyID {
			rejected = append(rejected, id)
			continue
		}
		candidates = append(candidates, candidate)
	}
	if len(rejected) > 0 {
		return apperr.E(apperr.Validation, "INVALID_MEMBERS", op, "users are unknown or outside the creator's company",
			apperr.WithActor(actorID),
			apperr.WithTenant(creator.Tenant()),
			apperr.WithContext("user_ids", rejected))
	}

	now := time.Now().UTC()
	for _, candidate := range candidates {
		member := Member{
			WorkspaceID: ws.ID,
			UserID:      candidate.ID,
			Role:        MemberRoleViewer,
			CreatedAt:   now,
		}
		if err := s.Workspaces.AddMember(ctx, member); err != nil {
			return apperr.E(apperr.FatalInternal, "MEMBER_ADD_FAILED", op, "failed to add member", apperr.WithCause(err))
		}
	}
	return nil
}

// RemoveMembers removes the given users from a workspace. The creator can
// never remove themselves.
func (s *MembershipService) RemoveMembers(ctx context.Context, workspaceID string, userIDs []string, actorID string) error {
	const op = "workspaces.remove_members"

	ws, creator, err := s.loadForManage(ctx, op, workspaceID, actorID)
	if err != nil {
		return err
	}

	for _, id := range userIDs {
		if id == ws.CreatorID {
			return apperr.E(apperr.Validation, "CREATOR_SELF_REMOVAL", op, "creator cannot be removed from their own workspace",
				apperr.WithActor(actorID),
				apperr.WithTenant(creator.Tenant()),
				apperr.WithContext("workspace_id", workspaceID))
		}
	}

	if err := s.Workspaces.RemoveMembers(ctx, workspaceID, userIDs); err != nil {
		return apperr.E(apperr.FatalInternal, "MEMBER_REMOVE_FAILED", op, "failed to remove members", apperr.WithCause(err))
	}
	return nil
}

// IsMember reports whether the user is a member of the workspace.
func (s *MembershipService) IsMember(ctx context.Context, userID, workspaceID string) (bool, error) {
	_, err := s.Workspaces.GetMember(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// MemberCount returns the number of members in the workspace.
func (s *MembershipService) MemberCount(ctx context.Context, workspaceID string) (int, error) {
	return s.Workspaces.CountMembers(ctx, workspaceID)
}

// ListMembers returns the workspace's members after an access check
// against the actor.
func (s *MembershipService) ListMembers(ctx context.Context, workspaceID, actorID string) ([]Member, error) {
	const op = "workspaces.list_members"
	resolver := &Resolver{Workspaces: s.Workspaces, Users: s.Users}
	if err := resolver.CanAccessWorkspace(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	members, err := s.Workspaces.ListMembers(ctx, workspaceID)
	if err != nil {
		return nil, apperr.E(apperr.FatalInternal, "MEMBER_LIST_FAILED", op, "failed to list members", apperr.WithCause(err))
	}
	return members, nil
}

// loadForManage loads the workspace and its creator, enforcing that the
// actor is the creator. Membership management is creator-only, stricter
// than general ownership access.
func (s *MembershipService) loadForManage(ctx context.Context, op, workspaceID, actorID string) (Workspace, users.User, error) {
	ws, err := s.Workspaces.GetByID(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Workspace{}, users.User{}, apperr.E(apperr.NotFound, "WORKSPACE_NOT_FOUND", op, "workspace not found",
				apperr.WithActor(actorID),
				apperr.WithContext("workspace_id", workspaceID))
		}
		return Workspace{}, users.User{}, apperr.E(apperr.FatalInternal, "WORKSPACE_LOOKUP_FAILED", op, "failed to look up workspace", apperr.WithCause(err))
	}

	if ws.CreatorID != actorID {
		return Workspace{}, users.User{}, apperr.E(apperr.Forbidden, "NOT_WORKSPACE_CREATOR", op, "only the workspace creator may manage members",
			apperr.WithActor(actorID),
			apperr.WithContext("workspace_id", workspaceID))
	}

	creator, err := s.Users.GetByID(ctx, ws.CreatorID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Workspace{}, users.User{}, apperr.E(apperr.Forbidden, "INVALID_PRINCIPAL", op, "unknown principal",
				apperr.WithActor(actorID))
		}
		return Workspace{}, users.User{}, apperr.E(apperr.FatalInternal, "USER_LOOKUP_FAILED", op, "failed to look up creator", apperr.WithCause(err))
	}

	return ws, creator, nil
}
