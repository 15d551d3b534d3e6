package testing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// ErrInjected is returned by [FakeStore] for operations listed in Fail.
var ErrInjected = errors.New("injected store failure")

// FakeStore is an in-memory list store that keeps insertion order.
//
// Operation names in Fail ("ListByOwner", "ListPublic", "Get", "Create", "Patch", "Delete")
// return [ErrInjected]. Calls counts every invocation by name, including failed ones.
type FakeStore struct {
	Fail map[string]bool

	mu     sync.RWMutex
	lists  []models.CustomList
	users  []models.User
	calls  map[string]int
	nextID int
}

// NewFakeStore seeds a store with lists, which are deep-copied.
func NewFakeStore(lists ...models.CustomList) *FakeStore {
	return &FakeStore{
		Fail:  map[string]bool{},
		lists: models.CloneLists(lists),
		calls: map[string]int{},
	}
}

func (s *FakeStore) record(op string) error {
	s.calls[op]++
	if s.Fail[op] {
		return fmt.Errorf("%s: %w", op, ErrInjected)
	}
	return nil
}

// Calls returns how often op was invoked.
func (s *FakeStore) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// TotalCalls returns the number of invocations across every operation.
func (s *FakeStore) TotalCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// Stored returns a copy of the list as the store holds it.
func (s *FakeStore) Stored(id string) (models.CustomList, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return models.CustomList{}, false
	}
	return s.lists[idx].Clone(), true
}

func (s *FakeStore) indexOf(id string) int {
	return slices.IndexFunc(s.lists, func(l models.CustomList) bool { return l.ID == id })
}

func (s *FakeStore) ListByOwner(_ context.Context, userID string) ([]models.CustomList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListByOwner"); err != nil {
		return nil, err
	}
	out := []models.CustomList{}
	for _, l := range s.lists {
		if l.CreatedBy == userID {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func (s *FakeStore) ListPublic(_ context.Context) ([]models.CustomList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ListPublic"); err != nil {
		return nil, err
	}
	out := []models.CustomList{}
	for _, l := range s.lists {
		if l.IsPublic {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func (s *FakeStore) Get(_ context.Context, id string) (*models.CustomList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("Get"); err != nil {
		return nil, err
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: list %s", shared.ErrNotFound, id)
	}
	l := s.lists[idx].Clone()
	return &l, nil
}

func (s *FakeStore) Create(_ context.Context, list models.CustomList) (*models.CustomList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("Create"); err != nil {
		return nil, err
	}
	s.nextID++
	list = list.Clone()
	list.ID = fmt.Sprintf("list-%d", s.nextID)
	s.lists = append(s.lists, list)
	out := list.Clone()
	return &out, nil
}

func (s *FakeStore) Patch(_ context.Context, id string, patch models.ListPatch) (*models.CustomList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("Patch"); err != nil {
		return nil, err
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: list %s", shared.ErrNotFound, id)
	}
	patch.Apply(&s.lists[idx])
	s.lists[idx] = s.lists[idx].Clone()
	out := s.lists[idx].Clone()
	return &out, nil
}

func (s *FakeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("Delete"); err != nil {
		return err
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: list %s", shared.ErrNotFound, id)
	}
	s.lists = slices.Delete(s.lists, idx, idx+1)
	return nil
}

func (s *FakeStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindUserByEmail"); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, email)
}

func (s *FakeStore) RegisterUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("RegisterUser"); err != nil {
		return nil, err
	}
	user.ID = fmt.Sprintf("user-%d", len(s.users)+1)
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, user)
	return &user, nil
}
