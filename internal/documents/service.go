package documents

import (
	"context"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/workspaces"
)

// Service contains read-side business logic for documents.
type Service struct {
	Repo     Repo
	Resolver *workspaces.Resolver
}

// ListForUser returns the actor's own documents.
func (s *Service) ListForUser(ctx context.Context, actorID string) ([]Document, error) {
	out, err := s.Repo.ListByUser(ctx, actorID)
	if err != nil {
		return nil, apperr.E(apperr.FatalInternal, "DOCUMENT_LIST_FAILED", "documents.list", "failed to list documents",
			apperr.WithActor(actorID), apperr.WithCause(err))
	}
	return out, nil
}

// ListForWorkspace returns a workspace's documents after an access check.
func (s *Service) ListForWorkspace(ctx context.Context, actorID, workspaceID string) ([]Document, error) {
	if err := s.Resolver.CanAccessWorkspace(ctx, actorID, workspaceID); err != nil {
		return nil, err
	}
	out, err := s.Repo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, apperr.E(apperr.FatalInternal, "DOCUMENT_LIST_FAILED", "documents.list_workspace", "failed to list workspace documents",
			apperr.WithActor(actorID),
			apperr.WithContext("workspace_id", workspaceID),
			apperr.WithCause(err))
	}
	return out, nil
}
