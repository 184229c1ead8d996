package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var ErrNotInitialized = errors.New("session store not initialized")

// Store holds the bearer token for one client. It is passed explicitly to whatever needs it.
// With a non-empty path the token survives restarts.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
	ready bool
	now   func() time.Time
}

type persisted struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"savedAt"`
}

// New returns a store. An empty path keeps the token in memory only.
func New(path string) *Store {
	return &Store{path: strings.TrimSpace(path), now: time.Now}
}

// Init loads a persisted token if one exists. A missing file is not an error.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("decode session: %w", err)
	}
	s.token = strings.TrimSpace(p.Token)
	return nil
}

// Token returns the current bearer token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set replaces the token and persists it.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotInitialized
	}
	s.token = strings.TrimSpace(token)
	return s.writeLocked()
}

// Clear forgets the token, including the persisted copy.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Teardown drops in-memory state. The persisted token is kept for the next Init.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.ready = false
}

func (s *Store) writeLocked() error {
	if s.path == "" {
		return nil
	}
	if s.token == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}
	payload, err := json.Marshal(persisted{Token: s.token, SavedAt: s.now().UTC()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
