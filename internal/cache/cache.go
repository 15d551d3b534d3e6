// package cache holds the signed-in user's custom lists and republishes them on every change
package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinelist/internal/catalog"
	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/services"
	"github.com/desertthunder/cinelist/internal/shared"
	"github.com/desertthunder/cinelist/internal/tasks"
)

// Listener receives the full snapshot after every change. It owns the slice it is given.
type Listener func(lists []models.CustomList)

// ListCache is the in-process source of truth for the current user's lists.
//
// Every mutation goes to the remote store first; the snapshot changes only after the store
// accepts it, and each change is published to all listeners as a complete copy. Mutations are
// not serialized against each other: two concurrent item edits on one list race, and the later
// whole-array write wins.
type ListCache struct {
	store   services.ListStore
	fetcher tasks.ListFetcher
	session services.SessionProvider
	logger  *log.Logger
	now     func() time.Time

	catalog   *catalog.Engine
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	snapshot  []models.CustomList
	listeners map[int]Listener
	nextID    int
}

// Option configures a ListCache.
type Option func(*ListCache)

// WithClock overrides the time source used for createdAt, updatedAt and addedAt.
func WithClock(now func() time.Time) Option {
	return func(c *ListCache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCatalog sets the engine used by [ListCache.Filtered]. The default collates in English.
func WithCatalog(e *catalog.Engine) Option {
	return func(c *ListCache) {
		if e != nil {
			c.catalog = e
		}
	}
}

// WithLogger sets the logger. The default writes to stderr.
func WithLogger(l *log.Logger) Option {
	return func(c *ListCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty cache. Call [ListCache.Reload] to populate it.
func New(store services.ListStore, fetcher tasks.ListFetcher, session services.SessionProvider, opts ...Option) *ListCache {
	c := &ListCache{
		store:     store,
		fetcher:   fetcher,
		session:   session,
		logger:    shared.NewLogger(nil),
		catalog:   catalog.New("en"),
		now:       func() time.Time { return time.Now().UTC() },
		snapshot:  []models.CustomList{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn and immediately calls it with the current snapshot.
// The returned function removes the listener.
//
// Listeners run synchronously on the goroutine that changed the snapshot and must not call
// mutating cache methods.
func (c *ListCache) Subscribe(fn Listener) (unsubscribe func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	current := models.CloneLists(c.snapshot)
	c.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Snapshot returns a copy of the current lists in their cached order.
func (c *ListCache) Snapshot() []models.CustomList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.CloneLists(c.snapshot)
}

// Filtered runs the snapshot through the catalog engine.
func (c *ListCache) Filtered(f models.Filter) []models.CustomList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog.Apply(c.snapshot, f)
}

// commit derives the next snapshot from the current one, swaps it in and notifies listeners
// in registration order, each with its own copy.
func (c *ListCache) commit(fn func(current []models.CustomList) []models.CustomList) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	next := fn(models.CloneLists(c.snapshot))
	c.snapshot = next
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]Listener, len(ids))
	copies := make([][]models.CustomList, len(ids))
	for i, id := range ids {
		fns[i] = c.listeners[id]
		copies[i] = models.CloneLists(next)
	}
	c.mu.Unlock()

	for i, fn := range fns {
		fn(copies[i])
	}
}

// publish replaces the whole snapshot.
func (c *ListCache) publish(lists []models.CustomList) {
	c.commit(func([]models.CustomList) []models.CustomList {
		return models.CloneLists(lists)
	})
}

func (c *ListCache) currentUserID(ctx context.Context) (string, bool) {
	if c.session == nil {
		return "", false
	}
	user, ok := c.session.CurrentUser(ctx)
	if !ok || user == nil || strings.TrimSpace(user.ID) == "" {
		return "", false
	}
	return user.ID, true
}

// Reload replaces the snapshot with the signed-in user's lists.
//
// Without a user the snapshot becomes empty and the store is not contacted. A store failure
// also yields an empty snapshot; it is logged, never returned.
func (c *ListCache) Reload(ctx context.Context) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		c.publish([]models.CustomList{})
		return
	}

	lists, err := c.store.ListByOwner(ctx, userID)
	if err != nil {
		c.logger.Warn("reload failed, publishing empty snapshot", "user", userID, "error", err)
		c.publish([]models.CustomList{})
		return
	}
	if lists == nil {
		lists = []models.CustomList{}
	}
	c.logger.Debug("reloaded lists", "user", userID, "count", len(lists))
	c.publish(lists)
}

// Create submits a new empty list owned by the signed-in user and appends the stored result.
func (c *ListCache) Create(ctx context.Context, req models.CreateListRequest) (*models.CustomList, error) {
	userID, ok := c.currentUserID(ctx)
	if !ok {
		return nil, shared.ErrUnauthenticated
	}

	now := c.now()
	list := models.CustomList{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CreatedBy:   userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsPublic:    req.IsPublic,
		Tags:        shared.NormalizeTags(req.Tags),
		Items:       []models.CustomListItem{},
	}
	if err := list.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	created, err := c.store.Create(ctx, list)
	if err != nil {
		return nil, remoteErr("create list", err)
	}

	c.commit(func(current []models.CustomList) []models.CustomList {
		return append(current, created.Clone())
	})
	c.logger.Info("created list", "list", created.ID, "name", created.Name)
	return created, nil
}

// Update sends the patch with a fresh updatedAt and replaces the cached entry in place.
func (c *ListCache) Update(ctx context.Context, listID string, patch models.ListPatch) (*models.CustomList, error) {
	now := c.now()
	patch.UpdatedAt = &now
	if patch.Tags != nil {
		tags := shared.NormalizeTags(*patch.Tags)
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = &tags
	}

	updated, err := c.store.Patch(ctx, listID, patch)
	if err != nil {
		return nil, remoteErr("update list", err)
	}
	c.replace(*updated)
	return updated, nil
}

// Delete removes the list remotely and then from the snapshot.
func (c *ListCache) Delete(ctx context.Context, listID string) error {
	if err := c.store.Delete(ctx, listID); err != nil {
		return remoteErr("delete list", err)
	}
	c.commit(func(current []models.CustomList) []models.CustomList {
		return slices.DeleteFunc(current, func(l models.CustomList) bool { return l.ID == listID })
	})
	c.logger.Info("deleted list", "list", listID)
	return nil
}

// replace swaps the cached entry with the same id, keeping every other entry's position.
// A list not in the snapshot is left out.
func (c *ListCache) replace(list models.CustomList) {
	c.commit(func(current []models.CustomList) []models.CustomList {
		if idx := slices.IndexFunc(current, func(l models.CustomList) bool { return l.ID == list.ID }); idx >= 0 {
			current[idx] = list.Clone()
		}
		return current
	})
}

// writeItems pushes the whole items array with a fresh updatedAt and replaces the cached entry.
func (c *ListCache) writeItems(ctx context.Context, listID string, items []models.CustomListItem) (*models.CustomList, error) {
	now := c.now()
	updated, err := c.store.Patch(ctx, listID, models.ListPatch{Items: &items, UpdatedAt: &now})
	if err != nil {
		return nil, remoteErr("write items", err)
	}
	c.replace(*updated)
	return updated, nil
}

// AddItem appends movieID to the list unless it is already present.
//
// The list is re-read through the enrichment path first, so the write carries the latest
// known items. An already-present movie returns that fresh list without writing.
func (c *ListCache) AddItem(ctx context.Context, listID string, movieID int64, notes string) (*models.CustomList, error) {
	list, err := c.Get(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.HasMovie(movieID) {
		return list, nil
	}

	items := append(slices.Clone(list.Items), models.CustomListItem{
		ID:      shared.GenerateID(),
		MovieID: movieID,
		AddedAt: c.now(),
		Notes:   strings.TrimSpace(notes),
	})
	return c.writeItems(ctx, listID, items)
}

// RemoveItem drops movieID from the list. A movie not in the list returns the list unchanged.
func (c *ListCache) RemoveItem(ctx context.Context, listID string, movieID int64) (*models.CustomList, error) {
	list, err := c.Get(ctx, listID)
	if err != nil {
		return nil, err
	}
	if !list.HasMovie(movieID) {
		return list, nil
	}

	items := slices.DeleteFunc(slices.Clone(list.Items), func(item models.CustomListItem) bool {
		return item.MovieID == movieID
	})
	return c.writeItems(ctx, listID, items)
}

// UpdateItemNotes sets the notes of movieID's item. A movie not in the list returns the list unchanged.
func (c *ListCache) UpdateItemNotes(ctx context.Context, listID string, movieID int64, notes string) (*models.CustomList, error) {
	list, err := c.Get(ctx, listID)
	if err != nil {
		return nil, err
	}
	idx := list.IndexOf(movieID)
	if idx < 0 {
		return list, nil
	}

	items := slices.Clone(list.Items)
	items[idx].Notes = strings.TrimSpace(notes)
	return c.writeItems(ctx, listID, items)
}

// Get fetches a single list fresh from the store with its items enriched.
func (c *ListCache) Get(ctx context.Context, listID string) (*models.CustomList, error) {
	list, err := c.fetcher.FetchEnriched(ctx, listID)
	if err != nil {
		return nil, remoteErr("fetch list", err)
	}
	return list, nil
}

// IsItemPresent reports whether the cached list holds movieID. No network call is made.
func (c *ListCache) IsItemPresent(listID string, movieID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx := slices.IndexFunc(c.snapshot, func(l models.CustomList) bool { return l.ID == listID })
	return idx >= 0 && c.snapshot[idx].HasMovie(movieID)
}

// ListsContaining returns copies of the cached lists that hold movieID, in snapshot order.
func (c *ListCache) ListsContaining(movieID int64) []models.CustomList {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []models.CustomList{}
	for _, l := range c.snapshot {
		if l.HasMovie(movieID) {
			out = append(out, l.Clone())
		}
	}
	return out
}

// PublicLists fetches every public list. Failures yield an empty result and are logged.
// The snapshot is not touched.
func (c *ListCache) PublicLists(ctx context.Context) []models.CustomList {
	lists, err := c.store.ListPublic(ctx)
	if err != nil {
		c.logger.Warn("public lists unavailable", "error", err)
		return []models.CustomList{}
	}
	if lists == nil {
		return []models.CustomList{}
	}
	return lists
}

func remoteErr(op string, err error) error {
	if errors.Is(err, shared.ErrRemote) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, shared.ErrRemote, err)
}
