package app

import (
	"context"
	"net/http"
	"time"

	"uigen/internal/domain"
	"uigen/internal/session"

	"github.com/google/uuid"
)

// AnonCookieName is the cookie identifying an anonymous visitor's work.
const AnonCookieName = "anon-id"

const anonCookieTTL = 7 * 24 * time.Hour

// AnonWorkService keeps the work of a visitor who has not signed in yet.
type AnonWorkService struct {
	repo   domain.AnonWorkRepository
	secure bool
}

// NewAnonWorkService creates an AnonWorkService backed by the given repository.
func NewAnonWorkService(repo domain.AnonWorkRepository, secure bool) *AnonWorkService {
	return &AnonWorkService{repo: repo, secure: secure}
}

func anonID(ctx context.Context) string {
	jar, ok := session.CookieJarFrom(ctx)
	if !ok {
		return ""
	}
	id, _ := jar.Get(AnonCookieName)
	return id
}

// SaveAnonWork stores snap for the current visitor and reports whether it was
// stored. Snapshots with no messages and nothing beyond the root entry are
// ignored.
func (s *AnonWorkService) SaveAnonWork(ctx context.Context, snap domain.AnonWorkSnapshot) (bool, error) {
	if len(snap.Messages) == 0 && len(snap.FileSystemData) <= 1 {
		return false, nil
	}

	jar, ok := session.CookieJarFrom(ctx)
	if !ok {
		return false, session.ErrNoCookieJar
	}
	id, ok := jar.Get(AnonCookieName)
	if !ok || id == "" {
		id = uuid.NewString()
		jar.Set(&http.Cookie{
			Name:     AnonCookieName,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(anonCookieTTL),
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if err := s.repo.SaveAnonWork(ctx, id, snap); err != nil {
		return false, err
	}
	return true, nil
}

// GetAnonWork returns the current visitor's work, or nil when there is none.
func (s *AnonWorkService) GetAnonWork(ctx context.Context) (*domain.AnonWorkSnapshot, error) {
	id := anonID(ctx)
	if id == "" {
		return nil, nil
	}
	return s.repo.GetAnonWork(ctx, id)
}

// ClearAnonWork drops the current visitor's work and forgets their id.
func (s *AnonWorkService) ClearAnonWork(ctx context.Context) error {
	id := anonID(ctx)
	if id == "" {
		return nil
	}
	if err := s.repo.DeleteAnonWork(ctx, id); err != nil {
		return err
	}
	if jar, ok := session.CookieJarFrom(ctx); ok {
		jar.Delete(AnonCookieName)
	}
	return nil
}
