// Package access resolves dashboard users to roles and decides which creators they may see.
package access

import (
	"context"
	"slices"
	"strings"
)

// Role is a dashboard user's access level
type Role string

const (
	// RoleInternal sees every creator
	RoleInternal Role = "internal"
	// RoleClient sees an assigned list of creators
	RoleClient Role = "client"
	// RoleCreator sees only their own creator
	RoleCreator Role = "creator"
)

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleInternal, RoleClient, RoleCreator:
		return true
	default:
		return false
	}
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// UserRole is a stored role assignment for an identity-provider user
type UserRole struct {
	UserID             string
	Role               Role
	CreatorID          string
	AssignedCreatorIDs string // comma-separated
}

// ResolvedRole is the effective access of the current user
type ResolvedRole struct {
	Role               Role     `json:"role"`
	CreatorID          string   `json:"creatorId,omitempty"`
	AssignedCreatorIDs []string `json:"assignedCreatorIds"`
}

// DefaultRole is what an unknown user resolves to: a creator with no creator id
func DefaultRole() ResolvedRole {
	return ResolvedRole{Role: RoleCreator, AssignedCreatorIDs: []string{}}
}

// Resolve turns a stored assignment into a ResolvedRole. A nil assignment yields DefaultRole.
func Resolve(row *UserRole) ResolvedRole {
	if row == nil {
		return DefaultRole()
	}
	role := row.Role
	if !role.IsValid() {
		role = RoleCreator
	}
	return ResolvedRole{
		Role:               role,
		CreatorID:          row.CreatorID,
		AssignedCreatorIDs: SplitCreatorIDs(row.AssignedCreatorIDs),
	}
}

// SplitCreatorIDs parses a comma-separated id list, trimming blanks
func SplitCreatorIDs(s string) []string {
	out := []string{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// CanAccessCreator reports whether r may read the given creator's data
func CanAccessCreator(r ResolvedRole, creatorID string) bool {
	switch r.Role {
	case RoleInternal:
		return true
	case RoleCreator:
		return r.CreatorID != "" && r.CreatorID == creatorID
	case RoleClient:
		return slices.Contains(r.AssignedCreatorIDs, creatorID)
	default:
		return false
	}
}

// AccessibleCreatorIDs lists the creators r may read.
// A nil result means unrestricted; an empty non-nil result means none.
func AccessibleCreatorIDs(r ResolvedRole) []string {
	switch r.Role {
	case RoleInternal:
		return nil
	case RoleClient:
		return append([]string{}, r.AssignedCreatorIDs...)
	case RoleCreator:
		if r.CreatorID != "" {
			return []string{r.CreatorID}
		}
	}
	return []string{}
}

// Repository loads stored role assignments
type Repository interface {
	// FindByUserID returns nil, nil when the user has no assignment
	FindByUserID(ctx context.Context, userID string) (*UserRole, error)
}
