package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// FileSession implements [SessionProvider] by persisting the signed-in user as JSON.
type FileSession struct {
	path string
}

var _ SessionProvider = (*FileSession)(nil)

// NewFileSession creates a session backed by the file at path ("~" is expanded).
func NewFileSession(path string) (*FileSession, error) {
	expanded, err := shared.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	return &FileSession{path: expanded}, nil
}

// Path returns the session file location.
func (s *FileSession) Path() string { return s.path }

// Load reads the persisted user. A missing file yields [shared.ErrUnauthenticated].
func (s *FileSession) Load() (*models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.ErrUnauthenticated
	} else if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSessionCorrupt, err)
	}
	if strings.TrimSpace(user.ID) == "" {
		return nil, shared.ErrUnauthenticated
	}
	return &user, nil
}

// CurrentUser returns the persisted user, or false when nobody is signed in or the file is unreadable.
func (s *FileSession) CurrentUser(_ context.Context) (*models.User, bool) {
	user, err := s.Load()
	if err != nil {
		return nil, false
	}
	return user, true
}

// Save writes user as the signed-in identity.
func (s *FileSession) Save(user models.User) error {
	if strings.TrimSpace(user.ID) == "" {
		return fmt.Errorf("%w: user has no id", shared.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear signs the user out. Clearing an absent session is not an error.
func (s *FileSession) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// StaticSession is a fixed identity. A nil User means signed out.
type StaticSession struct {
	User *models.User
}

// CurrentUser returns the fixed user.
func (s StaticSession) CurrentUser(_ context.Context) (*models.User, bool) {
	if s.User == nil {
		return nil, false
	}
	u := *s.User
	return &u, true
}
