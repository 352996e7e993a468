package session

import (
	"context"
	"errors"
	"net/http"

	"uigen/internal/domain"
)

// CookieName is the name of the cookie holding the session credential.
const CookieName = "auth-token"

// ErrNoCookieJar is returned when a write is attempted outside a context
// carrying a cookie jar.
var ErrNoCookieJar = errors.New("session: no cookie jar in context")

// Store keeps the session credential in the auth-token cookie.
type Store struct {
	tokens *TokenService
	secure bool
}

// NewStore creates a Store. secure marks the cookie Secure, for deployments
// served over TLS.
func NewStore(tokens *TokenService, secure bool) *Store {
	return &Store{tokens: tokens, secure: secure}
}

// Create issues a credential for the user and writes it to the ambient jar.
func (s *Store) Create(ctx context.Context, userID, email string) (*domain.SessionClaims, error) {
	jar, ok := CookieJarFrom(ctx)
	if !ok {
		return nil, ErrNoCookieJar
	}

	token, claims, err := s.tokens.Issue(userID, email)
	if err != nil {
		return nil, err
	}

	jar.Set(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return &claims, nil
}

// Destroy deletes the session cookie from the ambient jar.
func (s *Store) Destroy(ctx context.Context) error {
	jar, ok := CookieJarFrom(ctx)
	if !ok {
		return ErrNoCookieJar
	}
	jar.Delete(CookieName)
	return nil
}

// ReadFromRequest returns the claims of the request's session cookie, or nil.
func (s *Store) ReadFromRequest(r *http.Request) *domain.SessionClaims {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	return s.verify(c.Value)
}

// ReadCurrent returns the claims of the ambient session cookie, or nil.
func (s *Store) ReadCurrent(ctx context.Context) *domain.SessionClaims {
	jar, ok := CookieJarFrom(ctx)
	if !ok {
		return nil
	}
	raw, ok := jar.Get(CookieName)
	if !ok {
		return nil
	}
	return s.verify(raw)
}

func (s *Store) verify(raw string) *domain.SessionClaims {
	claims, ok := s.tokens.Verify(raw)
	if !ok {
		return nil
	}
	return claims
}
