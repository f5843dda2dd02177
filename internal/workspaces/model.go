package workspaces

import "time"

// OwnerType discriminates how a workspace owner ID is interpreted.
type OwnerType string

const (
	OwnerTypeUser    OwnerType = "USER"
	OwnerTypeCompany OwnerType = "COMPANY"
)

// Owner is the polymorphic workspace owner: a user or a company.
// Access decisions must go through its methods so the discriminant
// can never be skipped.
type Owner struct {
	Type OwnerType
	ID   string
}

// UserOwner returns an owner referencing a user.
func UserOwner(userID string) Owner {
	return Owner{Type: OwnerTypeUser, ID: userID}
}

// CompanyOwner returns an owner referencing a company.
func CompanyOwner(companyID string) Owner {
	return Owner{Type: OwnerTypeCompany, ID: companyID}
}

// GrantsAccess reports whether a principal with the given user ID and
// optional company ID may access a workspace held by this owner.
func (o Owner) GrantsAccess(userID string, companyID *string) bool {
	switch o.Type {
	case OwnerTypeUser:
		return o.ID == userID
	case OwnerTypeCompany:
		return companyID != nil && o.ID == *companyID
	}
	return false
}

// Workspace groups documents under a user or company owner. CreatorID is
// always a user, even for company-owned workspaces.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     Owner     `json:"-"`
	CreatorID string    `json:"creatorId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member roles within a workspace.
const (
	MemberRoleViewer = "VIEWER"
	MemberRoleEditor = "EDITOR"
	MemberRoleAdmin  = "ADMIN"
)

// Member is a (workspace, user) membership pair.
type Member struct {
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidMemberRole reports whether role is a known member role.
func ValidMemberRole(role string) bool {
	switch role {
	case MemberRoleViewer, MemberRoleEditor, MemberRoleAdmin:
		return true
	}
	return false
}
