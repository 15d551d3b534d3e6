package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newList(owner, name string, public bool, movieIDs ...int64) *models.CustomList {
	items := make([]models.CustomListItem, len(movieIDs))
	for i, id := range movieIDs {
		items[i] = models.CustomListItem{MovieID: id}
	}
	return &models.CustomList{
		Name:      name,
		CreatedBy: owner,
		IsPublic:  public,
		Items:     items,
	}
}

func TestUserRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &models.User{Email: " Test@Example.com ", Name: "Test User"}

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if user.ID == "" {
			t.Error("user ID should be set after creation")
		}
		if user.Email != "test@example.com" {
			t.Errorf("expected normalized email, got %q", user.Email)
		}
		if user.CreatedAt.IsZero() {
			t.Error("createdAt should be set")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &models.User{Email: "test@example.com", Name: "Test User"}

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		retrieved, err := repo.Get(user.ID)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}

		if retrieved.ID != user.ID || retrieved.Email != user.Email || retrieved.Name != "Test User" {
			t.Errorf("expected %+v, got %+v", user, retrieved)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &models.User{Email: "test@example.com", Name: "Test User"}

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		user.Name = "Renamed"
		if err := repo.Update(user); err != nil {
			t.Fatalf("failed to update user: %v", err)
		}

		retrieved, err := repo.Get(user.ID)
		if err != nil {
			t.Fatalf("failed to get user: %v", err)
		}
		if retrieved.Name != "Renamed" {
			t.Errorf("expected name 'Renamed', got %s", retrieved.Name)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))
		user := &models.User{Email: "test@example.com", Name: "Test User"}

		if err := repo.Create(user); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if err := repo.Delete(user.ID); err != nil {
			t.Fatalf("failed to delete user: %v", err)
		}

		if _, err := repo.Get(user.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound for deleted user, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewUserRepository(setupTestDB(t))

		for _, email := range []string{"user1@example.com", "user2@example.com", "user3@example.com"} {
			if err := repo.Create(&models.User{Email: email}); err != nil {
				t.Fatalf("failed to create user: %v", err)
			}
		}

		retrieved, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list users: %v", err)
		}
		if len(retrieved) != 3 {
			t.Errorf("expected 3 users, got %d", len(retrieved))
		}

		filtered, err := repo.List(map[string]any{"email": "USER2@example.com"})
		if err != nil {
			t.Fatalf("failed to list filtered users: %v", err)
		}
		if len(filtered) != 1 || filtered[0].Email != "user2@example.com" {
			t.Errorf("expected only user2@example.com, got %+v", filtered)
		}

		none, err := repo.List(map[string]any{"email": "nobody@example.com"})
		if err != nil || none == nil || len(none) != 0 {
			t.Errorf("expected an empty non-nil result, got %v, %v", none, err)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			if err := repo.Create(&models.User{Name: "No Email"}); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("DuplicateEmail", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			if err := repo.Create(&models.User{Email: "test@example.com"}); err != nil {
				t.Fatalf("failed to create first user: %v", err)
			}
			if err := repo.Create(&models.User{Email: "test@example.com"}); !errors.Is(err, shared.ErrConflict) {
				t.Errorf("expected ErrConflict, got %v", err)
			}
		})

		t.Run("NotFound", func(t *testing.T) {
			repo := NewUserRepository(setupTestDB(t))
			if _, err := repo.Get("nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound on Get, got %v", err)
			}
			if err := repo.Update(&models.User{ID: "nonexistent-id", Email: "a@b.c"}); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound on Update, got %v", err)
			}
			if err := repo.Delete("nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound on Delete, got %v", err)
			}
		})
	})
}

func TestListRepository(t *testing.T) {
	t.Run("Create & Get", func(t *testing.T) {
		repo := NewListRepository(setupTestDB(t))
		list := newList("u1", "Heists", true, 10, 20)
		list.ID = "client-chosen"
		list.Tags = []string{"crime", "classic"}
		list.Items[0].Notes = "start here"
		list.Items[1].Movie = &models.Movie{ID: 20, Title: "Thief", Genres: []string{"Crime"}}

		if err := repo.Create(list); err != nil {
			t.Fatalf("failed to create list: %v", err)
		}
		if list.ID == "" || list.ID == "client-chosen" {
			t.Errorf("expected a generated id, got %q", list.ID)
		}

		got, err := repo.Get(list.ID)
		if err != nil {
			t.Fatalf("failed to get list: %v", err)
		}

		if got.Name != "Heists" || got.CreatedBy != "u1" || !got.IsPublic {
			t.Errorf("unexpected list fields: %+v", got)
		}
		if len(got.Tags) != 2 || got.Tags[0] != "crime" || got.Tags[1] != "classic" {
			t.Errorf("expected tags to round trip, got %v", got.Tags)
		}
		if len(got.Items) != 2 || got.Items[0].MovieID != 10 || got.Items[1].MovieID != 20 {
			t.Fatalf("expected items [10 20] in order, got %+v", got.Items)
		}
		if got.Items[0].ID == "" || got.Items[0].AddedAt.IsZero() {
			t.Error("items should receive an id and addedAt")
		}
		if got.Items[0].Notes != "start here" {
			t.Errorf("expected notes to round trip, got %q", got.Items[0].Notes)
		}
		if got.Items[1].Movie == nil || got.Items[1].Movie.Title != "Thief" {
			t.Errorf("expected denormalized movie to round trip, got %+v", got.Items[1].Movie)
		}
		if !got.CreatedAt.Equal(list.CreatedAt) {
			t.Errorf("createdAt mismatch: %v vs %v", got.CreatedAt, list.CreatedAt)
		}
	})

	t.Run("empty list has non-nil items", func(t *testing.T) {
		repo := NewListRepository(setupTestDB(t))
		list := newList("u1", "Empty", false)
		list.Items = nil

		if err := repo.Create(list); err != nil {
			t.Fatalf("failed to create list: %v", err)
		}

		got, err := repo.Get(list.ID)
		if err != nil {
			t.Fatalf("failed to get list: %v", err)
		}
		if got.Items == nil || len(got.Items) != 0 {
			t.Errorf("expected empty items slice, got %#v", got.Items)
		}
		if got.Tags != nil {
			t.Errorf("expected nil tags, got %#v", got.Tags)
		}
	})

	t.Run("Update replaces items wholesale", func(t *testing.T) {
		repo := NewListRepository(setupTestDB(t))
		list := newList("u1", "Noir", false, 1, 2, 3)
		if err := repo.Create(list); err != nil {
			t.Fatalf("failed to create list: %v", err)
		}

		later := list.UpdatedAt.Add(time.Hour)
		list.Name = "Neo-noir"
		list.IsPublic = true
		list.UpdatedAt = later
		list.Items = []models.CustomListItem{list.Items[2], {MovieID: 4}}

		if err := repo.Update(list); err != nil {
			t.Fatalf("failed to update list: %v", err)
		}

		got, err := repo.Get(list.ID)
		if err != nil {
			t.Fatalf("failed to get list: %v", err)
		}
		if got.Name != "Neo-noir" || !got.IsPublic || !got.UpdatedAt.Equal(later) {
			t.Errorf("fields not updated: %+v", got)
		}
		if len(got.Items) != 2 || got.Items[0].MovieID != 3 || got.Items[1].MovieID != 4 {
			t.Errorf("expected items [3 4], got %+v", got.Items)
		}
	})

	t.Run("Delete is soft", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewListRepository(db)
		list := newList("u1", "Gone", false, 1)
		if err := repo.Create(list); err != nil {
			t.Fatalf("failed to create list: %v", err)
		}

		if err := repo.Delete(list.ID); err != nil {
			t.Fatalf("failed to delete list: %v", err)
		}
		if _, err := repo.Get(list.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(list.ID); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM custom_lists WHERE id = ?`, list.ID).Scan(&count); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Error("row should remain with deleted_at set")
		}
	})

	t.Run("List filters by owner and visibility", func(t *testing.T) {
		repo := NewListRepository(setupTestDB(t))
		fixtures := []*models.CustomList{
			newList("u1", "A", true, 1),
			newList("u2", "B", true),
			newList("u1", "C", false, 2, 3),
			newList("u1", "D", false),
		}
		for _, l := range fixtures {
			if err := repo.Create(l); err != nil {
				t.Fatalf("failed to create list: %v", err)
			}
		}
		if err := repo.Delete(fixtures[3].ID); err != nil {
			t.Fatalf("failed to delete list: %v", err)
		}

		owned, err := repo.List(map[string]any{"created_by": "u1"})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(owned) != 2 || owned[0].Name != "A" || owned[1].Name != "C" {
			t.Errorf("expected [A C] in insertion order, got %d lists", len(owned))
		}
		if len(owned) == 2 && len(owned[1].Items) != 2 {
			t.Errorf("expected items to be loaded, got %+v", owned[1].Items)
		}

		public, err := repo.List(map[string]any{"is_public": true})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(public) != 2 || public[0].Name != "A" || public[1].Name != "B" {
			t.Errorf("expected public [A B], got %d lists", len(public))
		}

		none, err := repo.List(map[string]any{"created_by": "nobody"})
		if err != nil || none == nil || len(none) != 0 {
			t.Errorf("expected empty non-nil result, got %v, %v", none, err)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		repo := NewListRepository(setupTestDB(t))

		if err := repo.Create(newList("u1", "  ", false)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for blank name, got %v", err)
		}
		if err := repo.Create(newList("u1", "Dupes", false, 7, 7)); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for duplicate movie, got %v", err)
		}

		ghost := newList("u1", "Ghost", false)
		ghost.ID = "missing"
		if err := repo.Update(ghost); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on update, got %v", err)
		}
	})
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	seq1, err := NextSequence(db, "users")
	if err != nil {
		t.Fatalf("failed to get first sequence: %v", err)
	}
	if seq1 != 1 {
		t.Errorf("expected first sequence to be 1, got %d", seq1)
	}

	seq2, err := NextSequence(db, "users")
	if err != nil {
		t.Fatalf("failed to get second sequence: %v", err)
	}
	if seq2 != 2 {
		t.Errorf("expected second sequence to be 2, got %d", seq2)
	}

	listSeq, err := NextSequence(db, "custom_lists")
	if err != nil {
		t.Fatalf("failed to get list sequence: %v", err)
	}
	if listSeq != 1 {
		t.Errorf("expected first list sequence to be 1, got %d", listSeq)
	}
}
