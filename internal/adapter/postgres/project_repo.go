package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"uigen/internal/domain"
)

// ListProjects lists a user's projects, most recently updated first.
func (d *DB) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, name, user_id, messages, data, created_at, updated_at FROM projects WHERE user_id=$1 ORDER BY updated_at DESC, created_at DESC;",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// GetProject returns a project owned by userID.
func (d *DB) GetProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT id, name, user_id, messages, data, created_at, updated_at FROM projects WHERE id=$1 AND user_id=$2;",
		id, userID)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	return p, err
}

// CreateProject stores a project.
func (d *DB) CreateProject(ctx context.Context, p domain.Project) error {
	messages, data, err := encodeWork(p.Messages, p.Data)
	if err != nil {
		return err
	}
	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO projects(id, name, user_id, messages, data, created_at, updated_at) VALUES($1, $2, $3, $4, $5, $6, $7);",
		p.ID, p.Name, p.UserID, messages, data, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	return err
}

// GetAnonWork returns the snapshot stored under anonID, or nil.
func (d *DB) GetAnonWork(ctx context.Context, anonID string) (*domain.AnonWorkSnapshot, error) {
	var messages, data []byte
	err := d.sql.QueryRowContext(ctx,
		"SELECT messages, data FROM anon_work WHERE anon_id=$1;", anonID,
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
		`INSERT INTO anon_work(anon_id, messages, data, updated_at) VALUES($1, $2, $3, $4)
		ON CONFLICT (anon_id) DO UPDATE SET messages=EXCLUDED.messages, data=EXCLUDED.data, updated_at=EXCLUDED.updated_at;`,
		anonID, messages, data, time.Now().UTC())
	return err
}

// DeleteAnonWork removes the snapshot stored under anonID.
func (d *DB) DeleteAnonWork(ctx context.Context, anonID string) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM anon_work WHERE anon_id=$1;", anonID)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var (
		p              domain.Project
		messages, data []byte
	)
	if err := s.Scan(&p.ID, &p.Name, &p.UserID, &messages, &data, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeWork(messages, data, &p.Messages, &p.Data); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeWork(messages []domain.ChatMessage, data domain.FileSystemData) ([]byte, []byte, error) {
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	if data == nil {
		data = domain.FileSystemData{}
	}
	m, err := json.Marshal(messages)
	if err != nil {
		return nil, nil, fmt.Errorf("encode messages: %w", err)
	}
	d, err := json.Marshal(data)
	if err != nil {
		return nil, nil, fmt.Errorf("encode data: %w", err)
	}
	return m, d, nil
}

func decodeWork(rawMessages, rawData []byte, messages *[]domain.ChatMessage, data *domain.FileSystemData) error {
	if err := json.Unmarshal(rawMessages, messages); err != nil {
		return fmt.Errorf("decode messages: %w", err)
	}
	if err := json.Unmarshal(rawData, data); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
