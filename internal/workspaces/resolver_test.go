package workspaces

import (
	"context"
	"testing"
	"time"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/users"
)

func seedUser(t *testing.T, repo users.Repo, id, role string, companyID *string) users.User {
	t.Helper()
	user := users.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		Role:      role,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	return user
}

func seedWorkspace(t *testing.T, repo Repo, id string, owner Owner, creatorID string) Workspace {
	t.Helper()
	ws := Workspace{
		ID:        id,
		Name:      "ws " + id,
		Owner:     owner,
		CreatorID: creatorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), ws); err != nil {
		t.Fatalf("seed workspace %s: %v", id, err)
	}
	return ws
}

func TestAdminAlwaysPasses(t *testing.T) {
	userRepo := users.NewMemoryRepo()
	wsRepo := NewMemoryRepo()
	resolver := &Resolver{Workspaces: wsRepo, Users: userRepo}

	seedUser(t, userRepo, "admin", users.RoleAdmin, nil)
	seedUser(t, userRepo, "owner", users.RoleUser, nil)
	seedWorkspace(t, wsRepo, "ws-1", UserOwner("owner"), "owner")

	if err := resolver.CanAccessWorkspace(context.Background(), "admin", "ws-1"); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
}

func TestUserOwnedWorkspaceAccess(t *testing.T) {
	userRepo := users.NewMemoryRepo()
	wsRepo := NewMemoryRepo()
	resolver := &Resolver{Workspaces: wsRepo, Users: userRepo}

	seedUser(t, userRepo, "owner", users.RoleUser, nil)
	seedUser(t, userRepo, "other", users.RoleUser, nil)
	seedWorkspace(t, wsRepo, "ws-1", UserOwner("owner"), "owner")

	if err := resolver.CanAccessWorkspace(context.Background(), "owner", "ws-1"); err != nil {
		t.Fatalf("owner should pass: %v", err)
	}
	err := resolver.CanAccessWorkspace(context.Background(), "other", "ws-1")
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for non-owner, got %v", err)
	}
}

func TestCompanyOwnedWorkspaceAccess(t *testing.T) {
	userRepo := users.NewMemoryRepo()
	wsRepo := NewMemoryRepo()
	resolver := &Resolver{Workspaces: wsRepo, Users: userRepo}

	companyA := "company-a"
	companyB := "company-b"
	seedUser(t, userRepo, "creator", users.RoleUser, &companyA)
	seedUser(t, userRepo, "colleague", users.RoleUser, &companyA)
	seedUser(t, userRepo, "outsider", users.RoleUser, &companyB)
	seedUser(t, userRepo, "solo", users.RoleUser, nil)
	seedWorkspace(t, wsRepo, "ws-1", CompanyOwner(companyA), "creator")

	if err := resolver.CanAccessWorkspace(context.Background(), "colleague", "ws-1"); err != nil {
		t.Fatalf("same-company colleague should pass: %v", err)
	}
	if err := resolver.CanAccessWorkspace(context.Background(), "outsider", "ws-1"); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for other company, got %v", err)
	}
	if err := resolver.CanAccessWorkspace(context.Background(), "solo", "ws-1"); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for solo user, got %v", err)
	}
}

func TestMissingWorkspaceIsNotFoundNotForbidden(t *testing.T) {
	userRepo := users.NewMemoryRepo()
	wsRepo := NewMemoryRepo()
	resolver := &Resolver{Workspaces: wsRepo, Users: userRepo}

	seedUser(t, userRepo, "user", users.RoleUser, nil)

	err := resolver.CanAccessWorkspace(context.Background(), "user", "no-such-ws")
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestStaleTokenActorIsForbidden(t *testing.T) {
	userRepo := users.NewMemoryRepo()
	wsRepo := NewMemoryRepo()
	resolver := &Resolver{Workspaces: wsRepo, Users: userRepo}

	seedUser(t, userRepo, "owner", users.RoleUser, nil)
	seedWorkspace(t, wsRepo, "ws-1", UserOwner("owner"), "owner")

	err := resolver.CanAccessWorkspace(context.Background(), "ghost", "ws-1")
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for unknown actor, got %v", err)
	}
}

func TestResolveOwner(t *testing.T) {
	resolver := &Resolver{}
	company := "company-1"

	owner := resolver.ResolveOwner(users.User{ID: "u1", CompanyID: &company})
	if owner.Type != OwnerTypeCompany || owner.ID != company {
		t.Fatalf("expected company owner, got %+v", owner)
	}

	owner = resolver.ResolveOwner(users.User{ID: "u1"})
	if owner.Type != OwnerTypeUser || owner.ID != "u1" {
		t.Fatalf("expected user owner, got %+v", owner)
	}
}
