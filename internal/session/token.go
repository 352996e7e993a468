// Package session issues, stores and verifies the signed session credential
// carried in the auth-token cookie.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"uigen/internal/domain"
	"uigen/internal/observability"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of a freshly issued session credential.
const DefaultTTL = 7 * 24 * time.Hour

// ErrEmptySecret is returned when a TokenService is built without a key.
var ErrEmptySecret = errors.New("session: signing secret is empty")

type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService creates and verifies HS256 session credentials.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// TokenOption configures a TokenService.
type TokenOption func(*TokenService)

// WithTTL overrides the credential lifetime.
func WithTTL(d time.Duration) TokenOption {
	return func(t *TokenService) { t.ttl = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenService) { t.now = now }
}

// WithLogger sets the logger used for verification diagnostics.
func WithLogger(l *slog.Logger) TokenOption {
	return func(t *TokenService) { t.logger = l }
}

// NewTokenService creates a TokenService keyed by secret.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	t := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
		logger: observability.Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a new credential for the user. The returned claims carry the
// exact issue and expiry instants; the token encodes them at second precision.
func (t *TokenService) Issue(userID, email string) (string, domain.SessionClaims, error) {
	now := t.now()
	claims := domain.SessionClaims{
		UserID:    userID,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(t.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", domain.SessionClaims{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry of raw. It reports false for a
// missing, malformed, tampered, foreign-key or expired credential and never
// says which.
func (t *TokenService) Verify(raw string) (*domain.SessionClaims, bool) {
	if raw == "" {
		return nil, false
	}

	var c tokenClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		t.reject(err)
		return nil, false
	}

	claims := &domain.SessionClaims{
		UserID:    c.UserID,
		Email:     c.Email,
		ExpiresAt: c.ExpiresAt.Time,
	}
	if c.IssuedAt != nil {
		claims.IssuedAt = c.IssuedAt.Time
	}
	return claims, true
}

func (t *TokenService) reject(err error) {
	observability.RecordVerifyFailure()
	t.logger.Debug("session credential rejected", "cause", err)
}
