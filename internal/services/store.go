package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

const defaultStoreBaseURL string = "http://127.0.0.1:3000"

// RESTStore implements [ListStore] over the generic REST persistence service.
type RESTStore struct {
	baseURL    string
	httpClient *http.Client
}

var _ ListStore = (*RESTStore)(nil)

// NewRESTStore creates a store client. A nil client gets a 10 second timeout.
func NewRESTStore(baseURL string, client *http.Client) *RESTStore {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultStoreBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RESTStore{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// BaseURL returns the store root the client talks to.
func (s *RESTStore) BaseURL() string { return s.baseURL }

func (s *RESTStore) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrRemote, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", shared.ErrRemote, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w: %s %s", shared.ErrRemote, shared.ErrNotFound, method, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrRemote, method, endpoint, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%w: %s %s returned %d", shared.ErrRemote, method, endpoint, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrRemote, err)
		}
	}
	return nil
}

func listPath(id string) string {
	return "/custom-lists/" + url.PathEscape(id)
}

// ListByOwner calls GET /custom-lists?createdBy=<id>.
func (s *RESTStore) ListByOwner(ctx context.Context, userID string) ([]models.CustomList, error) {
	q := url.Values{"createdBy": {userID}}
	var lists []models.CustomList
	if err := s.doRequest(ctx, http.MethodGet, "/custom-lists?"+q.Encode(), nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListPublic calls GET /custom-lists?isPublic=true.
func (s *RESTStore) ListPublic(ctx context.Context) ([]models.CustomList, error) {
	var lists []models.CustomList
	if err := s.doRequest(ctx, http.MethodGet, "/custom-lists?isPublic=true", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Get calls GET /custom-lists/<id>.
func (s *RESTStore) Get(ctx context.Context, id string) (*models.CustomList, error) {
	var list models.CustomList
	if err := s.doRequest(ctx, http.MethodGet, listPath(id), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Create calls POST /custom-lists. Any client-side id is cleared before sending.
func (s *RESTStore) Create(ctx context.Context, list models.CustomList) (*models.CustomList, error) {
	list.ID = ""
	var created models.CustomList
	if err := s.doRequest(ctx, http.MethodPost, "/custom-lists", list, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: created list has no id", shared.ErrRemote)
	}
	return &created, nil
}

// Patch calls PATCH /custom-lists/<id>.
func (s *RESTStore) Patch(ctx context.Context, id string, patch models.ListPatch) (*models.CustomList, error) {
	var updated models.CustomList
	if err := s.doRequest(ctx, http.MethodPatch, listPath(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete calls DELETE /custom-lists/<id>.
func (s *RESTStore) Delete(ctx context.Context, id string) error {
	return s.doRequest(ctx, http.MethodDelete, listPath(id), nil, nil)
}

// FindUserByEmail calls GET /users?email=<email> and returns the first match.
func (s *RESTStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := url.Values{"email": {email}}
	var users []models.User
	if err := s.doRequest(ctx, http.MethodGet, "/users?"+q.Encode(), nil, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, email)
	}
	return &users[0], nil
}

// RegisterUser calls POST /users.
func (s *RESTStore) RegisterUser(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = ""
	var created models.User
	if err := s.doRequest(ctx, http.MethodPost, "/users", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}
