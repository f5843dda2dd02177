package users

import "time"

// Roles a user can hold. ADMIN bypasses ownership checks everywhere.
const (
	RoleAdmin    = "ADMIN"
	RoleInternal = "INTERNAL"
	RoleUser     = "USER"
)

// User is a registered principal. CompanyID is nil for solo users.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CompanyID    *string   `json:"companyId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Tenant returns the tenant scope: the company ID for company users,
// the user's own ID for solo users.
func (u User) Tenant() string {
	if u.CompanyID != nil && *u.CompanyID != "" {
		return *u.CompanyID
	}
	return u.ID
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInternal, RoleUser:
		return true
	}
	return false
}
