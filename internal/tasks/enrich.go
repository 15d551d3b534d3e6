package tasks

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/services"
	"github.com/desertthunder/cinelist/internal/shared"
)

// Enricher attaches movie detail to list items.
type Enricher struct {
	meta   services.MetadataService
	logger *log.Logger
}

// NewEnricher creates an Enricher. A nil logger writes to stderr.
func NewEnricher(meta services.MetadataService, logger *log.Logger) *Enricher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Enricher{meta: meta, logger: logger}
}

// Enrich returns a copy of list with each item's Movie resolved.
//
// Each distinct movie id is looked up once and all lookups run concurrently. A failed or
// panicking lookup leaves that item's Movie unset; it never fails the list. Items keep their
// positions. Lists without items are returned without any lookup.
func (e *Enricher) Enrich(ctx context.Context, list models.CustomList) models.CustomList {
	out := list.Clone()
	if len(out.Items) == 0 || e.meta == nil {
		return out
	}

	ids := make([]int64, 0, len(out.Items))
	seen := make(map[int64]bool, len(out.Items))
	for _, item := range out.Items {
		if !seen[item.MovieID] {
			seen[item.MovieID] = true
			ids = append(ids, item.MovieID)
		}
	}

	var (
		mu       sync.Mutex
		resolved = make(map[int64]*models.Movie, len(ids))
		wg       conc.WaitGroup
	)
	for _, id := range ids {
		wg.Go(func() {
			movie, err := e.meta.Resolve(ctx, id)
			if err != nil {
				e.logger.Warn("movie lookup failed", "list", list.ID, "movie", id, "error", err)
				return
			}
			mu.Lock()
			resolved[id] = movie
			mu.Unlock()
		})
	}
	if r := wg.WaitAndRecover(); r != nil {
		e.logger.Error("movie lookup panicked", "list", list.ID, "panic", r.Value)
	}

	for i := range out.Items {
		if movie, ok := resolved[out.Items[i].MovieID]; ok {
			m := *movie
			out.Items[i].Movie = &m
		} else {
			out.Items[i].Movie = nil
		}
	}
	e.logger.Debug("enriched list", "list", list.ID, "items", len(out.Items), "resolved", len(resolved), "lookups", len(ids))
	return out
}
