package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"uigen/internal/domain"

	"github.com/google/uuid"
)

// GetUserByEmail retrieves a user by email.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.getUser(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return d.getUser(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (d *DB) getUser(ctx context.Context, query, arg string) (*domain.User, error) {
	var u domain.User
	err := d.sql.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser creates a new user.
func (d *DB) CreateUser(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListProjects lists a user's projects, most recently updated first.
func (d *DB) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, user_id, messages, data, created_at, updated_at FROM projects WHERE user_id = ? ORDER BY updated_at DESC, created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Project, 0)
	for rows.Next() {
		var (
			p              domain.Project
			messages, data string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &messages, &data, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if err := decodeWork(messages, data, &p.Messages, &p.Data); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetProject returns a project owned by userID.
func (d *DB) GetProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	var (
		p              domain.Project
		messages, data string
	)
	err := d.sql.QueryRowContext(ctx,
		"SELECT id, name, user_id, messages, data, created_at, updated_at FROM projects WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&p.ID, &p.Name, &p.UserID, &messages, &data, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := decodeWork(messages, data, &p.Messages, &p.Data); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject stores a project.
func (d *DB) CreateProject(ctx context.Context, p domain.Project) error {
	messages, data, err := encodeWork(p.Messages, p.Data)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO projects (id, name, user_id, messages, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.UserID, messages, data, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// GetAnonWork returns the snapshot stored under anonID, or nil.
func (d *DB) GetAnonWork(ctx context.Context, anonID string) (*domain.AnonWorkSnapshot, error) {
	var messages, data string
	err := d.sql.QueryRowContext(ctx,
		"SELECT messages, data FROM anon_work WHERE anon_id = ?", anonID,
	).Scan(&messages, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap domain.AnonWorkSnapshot
	if err := decodeWork(messages, data, &snap.Messages, &snap.FileSystemData); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveAnonWork replaces the snapshot stored under anonID.
func (d *DB) SaveAnonWork(ctx context.Context, anonID string, snap domain.AnonWorkSnapshot) error {
	messages, data, err := encodeWork(snap.Messages, snap.FileSystemData)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		`INSERT INTO anon_work (anon_id, messages, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (anon_id) DO UPDATE SET messages = excluded.messages, data = excluded.data, updated_at = excluded.updated_at`,
		anonID, messages, data, time.Now().UTC())
	return err
}

// DeleteAnonWork removes the snapshot stored under anonID.
func (d *DB) DeleteAnonWork(ctx context.Context, anonID string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM anon_work WHERE anon_id = ?", anonID)
	return err
}

func encodeWork(messages []domain.ChatMessage, data domain.FileSystemData) (string, string, error) {
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	if data == nil {
		data = domain.FileSystemData{}
	}
	m, err := json.Marshal(messages)
	if err != nil {
		return "", "", fmt.Errorf("encode messages: %w", err)
	}
	fs, err := json.Marshal(data)
	if err != nil {
		return "", "", fmt.Errorf("encode data: %w", err)
	}
	return string(m), string(fs), nil
}

func decodeWork(rawMessages, rawData string, messages *[]domain.ChatMessage, data *domain.FileSystemData) error {
	if err := json.Unmarshal([]byte(rawMessages), messages); err != nil {
		return fmt.Errorf("decode messages: %w", err)
	}
	if err := json.Unmarshal([]byte(rawData), data); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
