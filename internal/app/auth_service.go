// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"uigen/internal/domain"
	"uigen/internal/session"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthenticated indicates that the context carries no valid session.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Messages returned to the user in a failed AuthResult.
const (
	MsgMissingFields      = "Email and password are required"
	MsgPasswordTooShort   = "Password must be at least 8 characters"
	MsgEmailTaken         = "Email already registered"
	MsgInvalidCredentials = "Invalid credentials"
)

const minPasswordLen = 8

// AuthService handles the credential actions and the current session.
type AuthService struct {
	users    domain.UserRepository
	sessions *session.Store
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions *session.Store) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func failed(msg string) domain.AuthResult {
	return domain.AuthResult{Success: false, Error: msg}
}

// SignUp registers a user and starts a session for them.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (domain.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return failed(MsgMissingFields), nil
	}
	if len(password) < minPasswordLen {
		return failed(MsgPasswordTooShort), nil
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return failed(MsgEmailTaken), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if errors.Is(err, domain.ErrEmailTaken) {
		return failed(MsgEmailTaken), nil
	}
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.sessions.Create(ctx, user.ID, user.Email); err != nil {
		return domain.AuthResult{}, fmt.Errorf("create session: %w", err)
	}
	return domain.AuthResult{Success: true}, nil
}

// SignIn authenticates a user and starts a session for them.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return failed(MsgMissingFields), nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return failed(MsgInvalidCredentials), nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return failed(MsgInvalidCredentials), nil
	}

	if _, err := s.sessions.Create(ctx, user.ID, user.Email); err != nil {
		return domain.AuthResult{}, fmt.Errorf("create session: %w", err)
	}
	return domain.AuthResult{Success: true}, nil
}

// SignOut ends the current session.
func (s *AuthService) SignOut(ctx context.Context) error {
	return s.sessions.Destroy(ctx)
}

// CurrentUser returns the user of the current session.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	claims := s.sessions.ReadCurrent(ctx)
	if claims == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}
