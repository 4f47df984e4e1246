package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record referenced by the client's cookie token.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthContext is built once per request from a verified session and passed
// down the handler chain.
type AuthContext struct {
	Token    string
	UserID   uuid.UUID
	Username string
	Email    string
	Role     Role
}

func NewAuthContext(token string, s Session) *AuthContext {
	return &AuthContext{
		Token:    token,
		UserID:   s.UserID,
		Username: s.Username,
		Email:    s.Email,
		Role:     s.Role,
	}
}

func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

func (a *AuthContext) HasRole(roles ...Role) bool {
	if a == nil {
		return false
	}

	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}

	return false
}

// CanActOn reports whether the caller may mutate a resource owned by ownerID.
func (a *AuthContext) CanActOn(ownerID *uuid.UUID) bool {
	if a == nil {
		return false
	}
	if a.IsAdmin() {
		return true
	}

	return ownerID != nil && *ownerID == a.UserID
}
