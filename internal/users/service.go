package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"docstream-backend/internal/apperr"
	"docstream-backend/internal/companies"
	"docstream-backend/internal/shared/auth"
)

// Service contains business logic for users.
type Service struct {
	Repo      Repo
	Companies companies.Repo
	Tokens    *auth.Tokens
}

// RegisterInput is the payload for registration.
type RegisterInput struct {
	Email       string
	Name        string
	Password    string
	CompanyName string
}

// Register creates a user, optionally creating a company owned by them.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	const op = "users.register"

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return User{}, apperr.E(apperr.Validation, "INVALID_EMAIL", op, "a valid email is required")
	}
	if len(in.Password) < 8 {
		return User{}, apperr.E(apperr.Validation, "WEAK_PASSWORD", op, "password must be at least 8 characters")
	}
	if in.Name == "" {
		return User{}, apperr.E(apperr.Validation, "NAME_REQUIRED", op, "name is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperr.E(apperr.FatalInternal, "HASH_FAILED", op, "failed to hash password", apperr.WithCause(err))
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if strings.TrimSpace(in.CompanyName) != "" {
		company := companies.Company{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(in.CompanyName),
			OwnerID:   user.ID,
			CreatedAt: time.Now().UTC(),
			UpdatedAt: time.Now().UTC(),
		}
		if err := s.Companies.Create(ctx, company); err != nil {
			if errors.Is(err, companies.ErrDuplicateName) {
				return User{}, apperr.E(apperr.Conflict, "COMPANY_NAME_TAKEN", op, "company name already exists",
					apperr.WithContext("company_name", company.Name))
			}
			return User{}, apperr.E(apperr.FatalInternal, "COMPANY_CREATE_FAILED", op, "failed to create company", apperr.WithCause(err))
		}
		user.CompanyID = &company.ID
	}

	if err := s.Repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, apperr.E(apperr.Conflict, "EMAIL_TAKEN", op, "email already registered",
				apperr.WithContext("email", user.Email))
		}
		return User{}, apperr.E(apperr.FatalInternal, "USER_CREATE_FAILED", op, "failed to create user", apperr.WithCause(err))
	}

	return user, nil
}

// Login verifies credentials and returns the user with a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	const op = "users.login"

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", apperr.E(apperr.Forbidden, "INVALID_CREDENTIALS", op, "invalid email or password")
		}
		return User{}, "", apperr.E(apperr.FatalInternal, "USER_LOOKUP_FAILED", op, "failed to look up user", apperr.WithCause(err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, "", apperr.E(apperr.Forbidden, "INVALID_CREDENTIALS", op, "invalid email or password",
			apperr.WithActor(user.ID))
	}

	companyID := ""
	if user.CompanyID != nil {
		companyID = *user.CompanyID
	}
	token, err := s.Tokens.Issue(user.ID, user.Email, user.Role, companyID)
	if err != nil {
		return User{}, "", apperr.E(apperr.FatalInternal, "TOKEN_ISSUE_FAILED", op, "failed to issue token", apperr.WithCause(err))
	}

	return user, token, nil
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	const op = "users.get"
	if userID == "" {
		return User{}, apperr.E(apperr.Validation, "USER_ID_REQUIRED", op, "user id is required")
	}
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, apperr.E(apperr.NotFound, "USER_NOT_FOUND", op, "user not found",
				apperr.WithContext("user_id", userID))
		}
		return User{}, apperr.E(apperr.FatalInternal, "USER_LOOKUP_FAILED", op, "failed to look up user", apperr.WithCause(err))
	}
	return user, nil
}
