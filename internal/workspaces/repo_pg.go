package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new workspace.
func (r *PGRepo) Create(ctx context.Context, ws Workspace) error {
	const query = `
INSERT INTO workspaces (id, name, owner_type, owner_id, creator_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		ws.ID,
		ws.Name,
		string(ws.Owner.Type),
		ws.Owner.ID,
		ws.CreatorID,
		ws.CreatedAt,
	)
	return err
}

// GetByID returns a workspace by ID.
func (r *PGRepo) GetByID(ctx context.Context, workspaceID string) (Workspace, error) {
	const query = `
SELECT id, name, owner_type, owner_id, creator_id, created_at
FROM workspaces
WHERE id = $1
LIMIT 1`
	var ws Workspace
	var ownerType, ownerID string
	err := r.DB.QueryRowContext(ctx, query, workspaceID).Scan(
		&ws.ID,
		&ws.Name,
		&ownerType,
		&ownerID,
		&ws.CreatorID,
		&ws.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workspace{}, ErrNotFound
		}
		return Workspace{}, err
	}
	ws.Owner = Owner{Type: OwnerType(ownerType), ID: ownerID}
	return ws, nil
}

// ListAccessible returns workspaces the user owns, the user's company owns,
// or the user is a member of, newest first.
func (r *PGRepo) ListAccessible(ctx context.Context, userID string, companyID *string) ([]Workspace, error) {
	const query = `
SELECT DISTINCT w.id, w.name, w.owner_type, w.owner_id, w.creator_id, w.created_at
FROM workspaces w
LEFT JOIN workspace_members m ON m.workspace_id = w.id
WHERE (w.owner_type = 'USER' AND w.owner_id = $1)
   OR (w.owner_type = 'COMPANY' AND w.owner_id = $2)
   OR m.user_id = $1
ORDER BY w.created_at DESC`
	var company string
	if companyID != nil {
		company = *companyID
	}
	rows, err := r.DB.QueryContext(ctx, query, userID, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		var ws Workspace
		var ownerType, ownerID string
		if err := rows.Scan(&ws.ID, &ws.Name, &ownerType, &ownerID, &ws.CreatorID, &ws.CreatedAt); err != nil {
			return nil, err
		}
		ws.Owner = Owner{Type: OwnerType(ownerType), ID: ownerID}
		out = append(out, ws)
	}
	return out, rows.Err()
}

// AddMember inserts a membership, silently skipping duplicates.
func (r *PGRepo) AddMember(ctx context.Context, member Member) error {
	const query = `
INSERT INTO workspace_members (workspace_id, user_id, role, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (workspace_id, user_id) DO NOTHING`
	_, err := r.DB.ExecContext(ctx, query,
		member.WorkspaceID,
		member.UserID,
		member.Role,
		member.CreatedAt,
	)
	return err
}

// RemoveMembers removes the given users from a workspace.
func (r *PGRepo) RemoveMembers(ctx context.Context, workspaceID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(userIDs))
	args := make([]any, 0, len(userIDs)+1)
	args = append(args, workspaceID)
	for i, id := range userIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}
	query := fmt.Sprintf(
		`DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id IN (%s)`,
		strings.Join(placeholders, ", "),
	)
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

// GetMember returns a single membership pair.
func (r *PGRepo) GetMember(ctx context.Context, workspaceID, userID string) (Member, error) {
	const query = `
SELECT workspace_id, user_id, role, created_at
FROM workspace_members
WHERE workspace_id = $1 AND user_id = $2
LIMIT 1`
	var member Member
	err := r.DB.QueryRowContext(ctx, query, workspaceID, userID).Scan(
		&member.WorkspaceID,
		&member.UserID,
		&member.Role,
		&member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, err
	}
	return member, nil
}

// ListMembers returns all members of a workspace, oldest first.
func (r *PGRepo) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	const query = `
SELECT workspace_id, user_id, role, created_at
FROM workspace_members
WHERE workspace_id = $1
ORDER BY created_at`
	rows, err := r.DB.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var member Member
		if err := rows.Scan(&member.WorkspaceID, &member.UserID, &member.Role, &member.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, member)
	}
	return out, rows.Err()
}

// CountMembers returns the number of members in a workspace.
func (r *PGRepo) CountMembers(ctx context.Context, workspaceID string) (int, error) {
	const query = `SELECT count(*) FROM workspace_members WHERE workspace_id = $1`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, workspaceID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ Repo = (*PGRepo)(nil)
