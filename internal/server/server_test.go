package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/cinelist/internal/cache"
	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/services"
	"github.com/desertthunder/cinelist/internal/shared"
	"github.com/desertthunder/cinelist/internal/tasks"
	th "github.com/desertthunder/cinelist/internal/testing"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	srv := httptest.NewServer(NewBackend(db, shared.NewLogger(io.Discard)))
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("outer"), mark("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if strings.Join(order, ",") != "outer,inner,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("patterns in registration order", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		router.Handler(NewUserHandler(nil, shared.NewLogger(io.Discard)))

		got := strings.Join(router.Patterns(), ",")
		if got != "GET /health,/users,/users/{id}" {
			t.Errorf("unexpected patterns %s", got)
		}
	})

	t.Run("method mismatch", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("recoverer", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recoverer(shared.NewLogger(io.Discard)))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("expected JSON 500, got %d %s", rec.Code, rec.Body.String())
		}
	})
}

func TestListHandler(t *testing.T) {
	srv := newTestBackend(t)

	var created models.CustomList
	t.Run("POST assigns an id", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, srv.URL+"/custom-lists",
			`{"id":"mine","name":"Heists","createdBy":"u1","isPublic":true,"items":[{"movieId":10}]}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
		}
		if err := json.Unmarshal([]byte(body), &created); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if created.ID == "" || created.ID == "mine" {
			t.Errorf("expected server id, got %q", created.ID)
		}
		if len(created.Items) != 1 || created.Items[0].ID == "" {
			t.Errorf("expected one item with an id, got %+v", created.Items)
		}
	})

	t.Run("PATCH only touches present fields", func(t *testing.T) {
		resp, body := do(t, http.MethodPatch, srv.URL+"/custom-lists/"+created.ID, `{"description":"Vaults"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}

		var updated models.CustomList
		if err := json.Unmarshal([]byte(body), &updated); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if updated.Name != "Heists" || updated.Description != "Vaults" || !updated.IsPublic || len(updated.Items) != 1 {
			t.Errorf("unexpected patch result %+v", updated)
		}
		if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
			t.Errorf("updatedAt went backwards")
		}
	})

	t.Run("query filters", func(t *testing.T) {
		do(t, http.MethodPost, srv.URL+"/custom-lists", `{"name":"Private","createdBy":"u1"}`)
		do(t, http.MethodPost, srv.URL+"/custom-lists", `{"name":"Theirs","createdBy":"u2","isPublic":true}`)

		var owned, public []models.CustomList
		_, body := do(t, http.MethodGet, srv.URL+"/custom-lists?createdBy=u1", "")
		if err := json.Unmarshal([]byte(body), &owned); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		_, body = do(t, http.MethodGet, srv.URL+"/custom-lists?isPublic=true", "")
		if err := json.Unmarshal([]byte(body), &public); err != nil {
			t.Fatalf("bad body: %v", err)
		}

		if len(owned) != 2 || owned[0].Name != "Heists" || owned[1].Name != "Private" {
			t.Errorf("unexpected owned lists %+v", owned)
		}
		if len(public) != 2 || public[1].Name != "Theirs" {
			t.Errorf("unexpected public lists %+v", public)
		}

		resp, _ := do(t, http.MethodGet, srv.URL+"/custom-lists?isPublic=maybe", "")
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400 for bad isPublic, got %d", resp.StatusCode)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tests := []struct {
			name, method, path, body string
			status                   int
		}{
			{"missing list", http.MethodGet, "/custom-lists/nope", "", http.StatusNotFound},
			{"patch missing list", http.MethodPatch, "/custom-lists/nope", `{"name":"x"}`, http.StatusNotFound},
			{"malformed body", http.MethodPost, "/custom-lists", `{`, http.StatusBadRequest},
			{"blank name", http.MethodPost, "/custom-lists", `{"name":" ","createdBy":"u1"}`, http.StatusBadRequest},
			{"wrong method", http.MethodPut, "/custom-lists", "", http.StatusMethodNotAllowed},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, body := do(t, tt.method, srv.URL+tt.path, tt.body)
				if resp.StatusCode != tt.status {
					t.Errorf("expected %d, got %d: %s", tt.status, resp.StatusCode, body)
				}
				if !strings.Contains(body, `"error"`) {
					t.Errorf("expected JSON error body, got %s", body)
				}
			})
		}
	})

	t.Run("DELETE", func(t *testing.T) {
		resp, _ := do(t, http.MethodDelete, srv.URL+"/custom-lists/"+created.ID, "")
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", resp.StatusCode)
		}
		resp, _ = do(t, http.MethodGet, srv.URL+"/custom-lists/"+created.ID, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
		}
	})
}

func TestUserHandler(t *testing.T) {
	srv := newTestBackend(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/users", `{"email":"ada@example.com","name":"Ada"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPost, srv.URL+"/users", `{"email":"ADA@example.com"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d: %s", resp.StatusCode, body)
	}

	_, body = do(t, http.MethodGet, srv.URL+"/users?email=ada@example.com", "")
	var users []models.User
	if err := json.Unmarshal([]byte(body), &users); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Ada" {
		t.Fatalf("expected Ada, got %+v", users)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/users/"+users[0].ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for user by id, got %d", resp.StatusCode)
	}
}

// TestRESTStoreRoundTrip drives the real client and the list cache against the backend.
func TestRESTStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestBackend(t)
	store := services.NewRESTStore(srv.URL, srv.Client())

	user, err := store.RegisterUser(ctx, models.User{Email: "ada@example.com", Name: "Ada"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if found, err := store.FindUserByEmail(ctx, "ada@example.com"); err != nil || found.ID != user.ID {
		t.Fatalf("lookup failed: %v, %+v", err, found)
	}
	if _, err := store.FindUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	meta := &th.FakeMetadata{Movies: map[int64]models.Movie{
		10: {ID: 10, Title: "Rififi"},
		20: {ID: 20, Title: "Thief"},
	}}
	logger := shared.NewLogger(io.Discard)
	c := cache.New(store, tasks.NewEngine(store, meta, logger), services.StaticSession{User: user}, cache.WithLogger(logger))

	list, err := c.Create(ctx, models.CreateListRequest{Name: "Heists", Tags: []string{"Crime"}})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if list.ID == "" || len(list.Items) != 0 {
		t.Fatalf("expected server id and no items, got %+v", list)
	}

	if _, err := c.AddItem(ctx, list.ID, 10, "first"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := c.AddItem(ctx, list.ID, 20, ""); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := c.RemoveItem(ctx, list.ID, 10); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	got, err := c.Get(ctx, list.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].MovieID != 20 || got.Items[0].Movie == nil || got.Items[0].Movie.Title != "Thief" {
		t.Errorf("expected enriched item 20 only, got %+v", got.Items)
	}

	c.Reload(ctx)
	snapshot := c.Snapshot()
	if len(snapshot) != 1 || snapshot[0].ID != list.ID || !c.IsItemPresent(list.ID, 20) {
		t.Errorf("unexpected snapshot after reload: %+v", snapshot)
	}

	if err := c.Delete(ctx, list.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, list.ID); !errors.Is(err, shared.ErrNotFound) || !errors.Is(err, shared.ErrRemote) {
		t.Errorf("expected remote not-found after delete, got %v", err)
	}
	if len(c.Snapshot()) != 0 {
		t.Error("snapshot should be empty after delete")
	}
}
