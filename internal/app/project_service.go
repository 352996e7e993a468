package app

import (
	"context"
	"time"

	"uigen/internal/domain"
	"uigen/internal/session"

	"github.com/google/uuid"
)

// ProjectService encapsulates project use cases for the signed-in user.
type ProjectService struct {
	repo     domain.ProjectRepository
	sessions *session.Store
	now      func() time.Time
}

// NewProjectService creates a ProjectService backed by the given repository.
func NewProjectService(repo domain.ProjectRepository, sessions *session.Store) *ProjectService {
	return &ProjectService{repo: repo, sessions: sessions, now: time.Now}
}

func (s *ProjectService) userID(ctx context.Context) (string, error) {
	claims := s.sessions.ReadCurrent(ctx)
	if claims == nil {
		return "", ErrUnauthenticated
	}
	return claims.UserID, nil
}

// ListProjects returns the current user's projects, most recently updated
// first.
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListProjects(ctx, userID)
}

// CreateProject stores a new project owned by the current user.
func (s *ProjectService) CreateProject(ctx context.Context, in domain.NewProject) (*domain.Project, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := domain.Project{
		ID:        uuid.NewString(),
		Name:      in.Name,
		UserID:    userID,
		Messages:  in.Messages,
		Data:      in.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Messages == nil {
		p.Messages = []domain.ChatMessage{}
	}
	if p.Data == nil {
		p.Data = domain.FileSystemData{}
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProject returns one of the current user's projects.
func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetProject(ctx, userID, id)
}
