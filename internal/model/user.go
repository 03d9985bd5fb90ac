// Package model defines domain entities for the application.
package model

import "time"

// User represents an account. Email is the login identifier.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	Name         string    `json:"name"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthContext holds the authenticated caller of a request.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID   string
	Email    string
	IsStaff  bool
	TokenRef string // digest of the presented token, never the token itself
}

// AuthContext builds the request identity for this user.
func (u *User) AuthContext(tokenRef string) *AuthContext {
	return &AuthContext{
		UserID:   u.ID,
		Email:    u.Email,
		IsStaff:  u.IsStaff,
		TokenRef: tokenRef,
	}
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ToResponse converts a User to UserResponse.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		Email: u.Email,
		Name:  u.Name,
	}
}

// TokenResponse is returned by the token endpoint.
type TokenResponse struct {
	Token string `json:"token"`
}
