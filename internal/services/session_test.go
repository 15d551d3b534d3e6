package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

func TestFileSession(t *testing.T) {
	ctx := context.Background()

	newSession := func(t *testing.T) *FileSession {
		t.Helper()
		s, err := NewFileSession(filepath.Join(t.TempDir(), "nested", "session.json"))
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		return s
	}

	t.Run("signed out when file is missing", func(t *testing.T) {
		s := newSession(t)
		if _, ok := s.CurrentUser(ctx); ok {
			t.Error("expected no current user")
		}
		if _, err := s.Load(); !errors.Is(err, shared.ErrUnauthenticated) {
			t.Errorf("expected ErrUnauthenticated, got %v", err)
		}
	})

	t.Run("Save then CurrentUser", func(t *testing.T) {
		s := newSession(t)
		if err := s.Save(models.User{ID: "u1", Email: "a@b.c"}); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		user, ok := s.CurrentUser(ctx)
		if !ok || user.ID != "u1" || user.Email != "a@b.c" {
			t.Errorf("unexpected user %+v (ok=%v)", user, ok)
		}
	})

	t.Run("Save rejects user without id", func(t *testing.T) {
		if err := newSession(t).Save(models.User{Email: "a@b.c"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Clear signs out", func(t *testing.T) {
		s := newSession(t)
		s.Save(models.User{ID: "u1", Email: "a@b.c"})

		if err := s.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if _, ok := s.CurrentUser(ctx); ok {
			t.Error("expected signed out after Clear")
		}
		if err := s.Clear(); err != nil {
			t.Errorf("second Clear should be a no-op, got %v", err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		s := newSession(t)
		os.MkdirAll(filepath.Dir(s.Path()), 0700)
		os.WriteFile(s.Path(), []byte("{not json"), 0600)

		if _, err := s.Load(); !errors.Is(err, shared.ErrSessionCorrupt) {
			t.Errorf("expected ErrSessionCorrupt, got %v", err)
		}
		if _, ok := s.CurrentUser(ctx); ok {
			t.Error("corrupt session should read as signed out")
		}
	})
}

func TestStaticSession(t *testing.T) {
	if _, ok := (StaticSession{}).CurrentUser(context.Background()); ok {
		t.Error("nil user should be signed out")
	}

	user, ok := StaticSession{User: &models.User{ID: "u1"}}.CurrentUser(context.Background())
	if !ok || user.ID != "u1" {
		t.Errorf("unexpected user %+v", user)
	}
}
