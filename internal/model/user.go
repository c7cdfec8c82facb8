package model

import (
	"errors"
	"time"
)

// User represents a registered marketplace member.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	Password       string    `db:"password" json:"-"` // stored as submitted, never serialized
	ProfilePicture *string   `db:"profile_picture" json:"profilePicture"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// UserSummary is the public projection attached to books, blogs and auth responses.
type UserSummary struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Email    string `db:"email" json:"email"`
}

// Placeholder values used when an enriched record references a missing user.
const (
	UnknownUsername = "Unknown"
	UnknownEmail    = "unknown@email.com"
)

// Summary projects the user onto its public fields.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// UnknownUserSummary is the fallback summary for a dangling user reference.
func UnknownUserSummary(id int64) UserSummary {
	return UserSummary{
		ID:       id,
		Username: UnknownUsername,
		Email:    UnknownEmail,
	}
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username       string  `json:"username" validate:"required,notblank,max=64"`
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required"`
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
}

// UpdateProfileRequest is the body of PATCH /api/users/me. A null, missing or
// empty ("") profilePicture clears the picture; anything else must be a URL.
type UpdateProfileRequest struct {
	ProfilePicture *string `json:"profilePicture" validate:"omitempty,url"`
}

// Profile is a member's public page: their listings and posts, without the email.
type Profile struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	ProfilePicture *string   `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	Books          []Book    `json:"books"`
	Blogs          []Blog    `json:"blogs"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token,omitempty"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already exists")

	// ErrEmailExists is returned when attempting to create a user with a taken email
	ErrEmailExists = errors.New("email already exists")

	// ErrInvalidRegistration is returned when the username is blank or the password empty
	ErrInvalidRegistration = errors.New("username and password are required")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
