package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/services"
	"github.com/desertthunder/cinelist/internal/shared"
)

// ListFetcher reads a single list with its items resolved.
type ListFetcher interface {
	FetchEnriched(ctx context.Context, listID string) (*models.CustomList, error)
}

// Engine reads lists from the remote store and enriches them.
type Engine struct {
	store    services.ListStore
	enricher *Enricher
	logger   *log.Logger
}

var _ ListFetcher = (*Engine)(nil)

// NewEngine creates an Engine. A nil logger writes to stderr.
func NewEngine(store services.ListStore, meta services.MetadataService, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		store:    store,
		enricher: NewEnricher(meta, shared.WithLogger(logger, "component", "enricher")),
		logger:   logger,
	}
}

// FetchEnriched fetches a list and resolves its items.
//
// A failed list fetch is the only error: item-level lookup failures leave those items unresolved.
func (e *Engine) FetchEnriched(ctx context.Context, listID string) (*models.CustomList, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}
	list, err := e.store.Get(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list %s: %w", listID, err)
	}
	enriched := e.enricher.Enrich(ctx, *list)
	return &enriched, nil
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
