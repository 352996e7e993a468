// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"errors"
	"time"
)

// User represents a registered user.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionClaims is the payload carried by a session credential.
type SessionClaims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthResult is the outcome of a credential action. A failed action is data,
// not an error: Error carries a message suitable for the user.
type AuthResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
}

// ErrEmailTaken is returned by UserRepository.CreateUser when the email is
// already registered.
var ErrEmailTaken = errors.New("email already registered")
