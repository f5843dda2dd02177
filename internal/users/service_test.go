package users

import (
	"context"
	"testing"
	"time"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/companies"
	"docstream-backend/internal/shared/auth"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return &Service{
		Repo:      NewMemoryRepo(),
		Companies: companies.NewMemoryRepo(),
		Tokens:    tokens,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "Alice@Example.com",
		Name:     "Alice",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Role != RoleUser {
		t.Fatalf("role = %q, want USER", user.Role)
	}
	if user.CompanyID != nil {
		t.Fatalf("solo registration must not have a company")
	}

	got, token, err := svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result")
	}
}

func TestRegisterWithCompanySetsTenant(t *testing.T) {
	svc := newTestService(t)
	user, err := svc.Register(context.Background(), RegisterInput{
		Email:       "bob@example.com",
		Name:        "Bob",
		Password:    "password123",
		CompanyName: "Acme",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.CompanyID == nil || *user.CompanyID == "" {
		t.Fatalf("expected company to be created")
	}
	if user.Tenant() != *user.CompanyID {
		t.Fatalf("tenant = %q, want company id", user.Tenant())
	}

	company, err := svc.Companies.GetByID(context.Background(), *user.CompanyID)
	if err != nil {
		t.Fatalf("company lookup: %v", err)
	}
	if company.OwnerID != user.ID {
		t.Fatalf("company owner = %q, want %q", company.OwnerID, user.ID)
	}
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	in := RegisterInput{Email: "dup@example.com", Name: "Dup", Password: "password123"}

	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(ctx, in)
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestLoginWrongPasswordIsForbidden(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "c@example.com", Name: "C", Password: "password123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, _, err := svc.Login(ctx, "c@example.com", "wrong-password")
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

func TestSoloUserTenantIsSelf(t *testing.T) {
	user := User{ID: "u1"}
	if user.Tenant() != "u1" {
		t.Fatalf("tenant = %q", user.Tenant())
	}
}
