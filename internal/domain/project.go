package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrProjectNotFound is returned when a project does not exist for its owner.
var ErrProjectNotFound = errors.New("project not found")

// ChatMessage is one message of an agent conversation. ID, Role and Content
// hold the corresponding keys when they are non-empty strings. Every other key,
// including a structured (array) content, is kept verbatim in Extra.
type ChatMessage struct {
	ID      string
	Role    string
	Content string

	Extra map[string]json.RawMessage
}

const (
	keyID      = "id"
	keyRole    = "role"
	keyContent = "content"
)

// MarshalJSON writes Extra plus the known fields that are set. A message
// decoded by UnmarshalJSON comes back with the same keys and values.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	for k, v := range map[string]string{keyID: m.ID, keyRole: m.Role, keyContent: m.Content} {
		if v == "" {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts any JSON object.
func (m *ChatMessage) UnmarshalJSON(b []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}

	*m = ChatMessage{}
	for _, f := range []struct {
		key string
		dst *string
	}{{keyID, &m.ID}, {keyRole, &m.Role}, {keyContent, &m.Content}} {
		raw, ok := all[f.key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			continue
		}
		*f.dst = s
		delete(all, f.key)
	}

	if len(all) > 0 {
		m.Extra = all
	}
	return nil
}

// FileSystemData maps a virtual path to its serialized file entry.
type FileSystemData map[string]json.RawMessage

// AnonWorkSnapshot is the work a user accumulated before authenticating.
type AnonWorkSnapshot struct {
	Messages       []ChatMessage  `json:"messages"`
	FileSystemData FileSystemData `json:"fileSystemData"`
}

// HasWork reports whether the snapshot holds anything worth migrating. Only
// messages count: file data alone is not anonymous work.
func (s *AnonWorkSnapshot) HasWork() bool {
	return s != nil && len(s.Messages) > 0
}

// Project is a persisted design project.
type Project struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	UserID    string         `json:"userId"`
	Messages  []ChatMessage  `json:"messages"`
	Data      FileSystemData `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// NewProject carries the fields a caller supplies when creating a project.
type NewProject struct {
	Name     string         `json:"name"`
	Messages []ChatMessage  `json:"messages"`
	Data     FileSystemData `json:"data"`
}

// ProjectRepository is the port for project persistence. ListProjects returns
// the most recently updated project first.
type ProjectRepository interface {
	ListProjects(ctx context.Context, userID string) ([]Project, error)
	GetProject(ctx context.Context, userID, id string) (*Project, error)
	CreateProject(ctx context.Context, p Project) error
}

// AnonWorkRepository is the port for anonymous work, keyed by anonymous id.
// GetAnonWork returns nil when nothing is stored.
type AnonWorkRepository interface {
	GetAnonWork(ctx context.Context, anonID string) (*AnonWorkSnapshot, error)
	SaveAnonWork(ctx context.Context, anonID string, snap AnonWorkSnapshot) error
	DeleteAnonWork(ctx context.Context, anonID string) error
}
