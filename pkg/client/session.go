package client

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"catalogue/internal/models"
)

// Session is the client's persisted login state: the derived Basic
// credential and the identity of the logged-in reviewer. The zero value is
// the anonymous session.
type Session struct {
	Credential string       `json:"credential,omitempty"`
	User       *models.User `json:"user,omitempty"`
}

// Authenticated reports whether the session holds a credential.
func (s Session) Authenticated() bool {
	return s.Credential != ""
}

// SessionStore is the key-value boundary behind session persistence. The
// session logic does not care where the state lives; the browser client kept
// it in localStorage, this library offers an in-memory store and a file
// store.
type SessionStore interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() error
}

// MemorySessionStore keeps the session for the lifetime of the process.
type MemorySessionStore struct {
	mu      sync.Mutex
	session Session
}

// NewMemorySessionStore creates a new MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *MemorySessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	return nil
}

// FileSessionStore persists the session as a JSON file so it survives
// process restarts.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a FileSessionStore at the given path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, nil
		}
		return Session{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, fmt.Errorf("failed to decode session file: %w", err)
	}
	return session, nil
}

func (s *FileSessionStore) Save(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
