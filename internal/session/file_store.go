package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"tarabaho-web/internal/domain"
)

// FileStore keeps CLI sessions in a single JSON file, one entry per profile
// key. The file is written with 0600 permissions since it holds bearer tokens.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath is $XDG_CONFIG_HOME/tarabaho/session.json or the OS equivalent.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("session: locate config dir: %w", err)
	}
	return filepath.Join(dir, "tarabaho", "session.json"), nil
}

func (s *FileStore) readAll() (map[string]domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read %s: %w", s.path, err)
	}

	sessions := map[string]domain.Session{}
	if len(data) == 0 {
		return sessions, nil
	}
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", s.path, err)
	}
	return sessions, nil
}

func (s *FileStore) writeAll(sessions map[string]domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: create dir: %w", err)
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("session: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("session: replace %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, key string, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.readAll()
	if err != nil {
		return err
	}
	sessions[key] = *sess
	return s.writeAll(sessions)
}

func (s *FileStore) Load(_ context.Context, key string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.readAll()
	if err != nil {
		return nil, err
	}
	sess, ok := sessions[key]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.readAll()
	if err != nil {
		return err
	}
	if _, ok := sessions[key]; !ok {
		return nil
	}
	delete(sessions, key)
	return s.writeAll(sessions)
}
