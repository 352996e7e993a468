// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"uigen/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	projects map[string]domain.Project
	anonWork map[string]domain.AnonWorkSnapshot
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		projects: make(map[string]domain.Project),
		anonWork: make(map[string]domain.AnonWorkSnapshot),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.ProjectRepository = (*DB)(nil)
var _ domain.AnonWorkRepository = (*DB)(nil)

// --- UserRepository ---

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// CreateUser creates a new user.
func (db *DB) CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, domain.ErrEmailTaken
		}
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// --- ProjectRepository ---

// ListProjects lists a user's projects, most recently updated first.
func (db *DB) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.Project, 0)
	for _, p := range db.projects {
		if p.UserID == userID {
			result = append(result, cloneProject(p))
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

// GetProject returns a project owned by userID.
func (db *DB) GetProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.projects[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrProjectNotFound
	}
	cp := cloneProject(p)
	return &cp, nil
}

// CreateProject stores a project.
func (db *DB) CreateProject(ctx context.Context, p domain.Project) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.projects[p.ID] = cloneProject(p)
	return nil
}

// --- AnonWorkRepository ---

// GetAnonWork returns the snapshot stored under anonID, or nil.
func (db *DB) GetAnonWork(ctx context.Context, anonID string) (*domain.AnonWorkSnapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	snap, ok := db.anonWork[anonID]
	if !ok {
		return nil, nil
	}
	cp := cloneSnapshot(snap)
	return &cp, nil
}

// SaveAnonWork replaces the snapshot stored under anonID.
func (db *DB) SaveAnonWork(ctx context.Context, anonID string, snap domain.AnonWorkSnapshot) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.anonWork[anonID] = cloneSnapshot(snap)
	return nil
}

// DeleteAnonWork removes the snapshot stored under anonID.
func (db *DB) DeleteAnonWork(ctx context.Context, anonID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.anonWork, anonID)
	return nil
}

// Stored values are copied in and out so callers cannot mutate them.

func cloneMessages(in []domain.ChatMessage) []domain.ChatMessage {
	if in == nil {
		return nil
	}
	out := make([]domain.ChatMessage, len(in))
	for i, m := range in {
		out[i] = m
		if m.Extra != nil {
			out[i].Extra = make(map[string]json.RawMessage, len(m.Extra))
			for k, v := range m.Extra {
				out[i].Extra[k] = append(json.RawMessage(nil), v...)
			}
		}
	}
	return out
}

func cloneData(in domain.FileSystemData) domain.FileSystemData {
	if in == nil {
		return nil
	}
	out := make(domain.FileSystemData, len(in))
	for k, v := range in {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func cloneProject(p domain.Project) domain.Project {
	p.Messages = cloneMessages(p.Messages)
	p.Data = cloneData(p.Data)
	return p
}

func cloneSnapshot(s domain.AnonWorkSnapshot) domain.AnonWorkSnapshot {
	return domain.AnonWorkSnapshot{
		Messages:       cloneMessages(s.Messages),
		FileSystemData: cloneData(s.FileSystemData),
	}
}
