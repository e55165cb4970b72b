package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Lastname     string     `json:"lastname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Active       bool       `json:"active"`
	RoleID       int        `json:"role_id"`
	WorkspaceIDs []string   `json:"workspace_ids,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// Claims são as claims do token JWT emitido no login
type Claims struct {
	UserID       int      `json:"user_id"`
	UserRoleID   int      `json:"user_role_id"`
	Email        string   `json:"email"`
	WorkspaceIDs []string `json:"workspace_ids"`
	jwt.RegisteredClaims
}

// HasWorkspace informa se o usuário tem acesso ao workspace informado
func (c *Claims) HasWorkspace(workspaceID string) bool {
	for _, id := range c.WorkspaceIDs {
		if id == workspaceID {
			return true
		}
	}
	return false
}
