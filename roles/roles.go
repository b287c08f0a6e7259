// Package roles resolves the role assigned to newly registered accounts.
package roles

import "context"

const (
	TypeAuthenticated = "authenticated"
	TypePublic        = "public"
)

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// RoleRepo returns apperrors.ErrNotFound when no role has the requested type
type RoleRepo interface {
	GetByType(ctx context.Context, roleType string) (*Role, error)
}

// Defaults are the roles seeded in every fresh directory
func Defaults() []Role {
	return []Role{
		{ID: "1", Name: "Authenticated", Type: TypeAuthenticated, Description: "Default role given to authenticated user."},
		{ID: "2", Name: "Public", Type: TypePublic, Description: "Default role given to unauthenticated user."},
	}
}
