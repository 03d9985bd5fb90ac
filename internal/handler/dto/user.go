// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// CreateUserRequest is the body of POST /user/create.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// TokenRequest is the body of POST /user/token.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PATCH /user/me. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}
