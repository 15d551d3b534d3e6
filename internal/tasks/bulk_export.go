package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/cinelist/internal/formatter"
	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// BulkExportOpts contains configuration for bulk list exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: json, csv, markdown, txt, xlsx
	OutputDir  string           // Base output directory (default: cinelist_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max 10)
	RateLimit  float64          // List fetches per second (default: 5)
}

// ListExportJob is one fetched, enriched list waiting to be written.
type ListExportJob struct {
	Index  int
	ListID string
	List   *models.CustomList
}

// ListExportResult reports the outcome for a single list.
type ListExportResult struct {
	Index    int      `json:"-"`
	ListID   string   `json:"listId"`
	ListName string   `json:"listName"`
	Success  bool     `json:"success"`
	Files    []string `json:"files,omitempty"`
	Error    error    `json:"-"`
	Message  string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	Format            formatter.Format   `json:"format"`
	TotalLists        int                `json:"totalLists"`
	SuccessfulExports int                `json:"successfulExports"`
	FailedExports     int                `json:"failedExports"`
	OutputDirectory   string             `json:"outputDirectory"`
	ManifestPath      string             `json:"-"`
	StartedAt         time.Time          `json:"startedAt"`
	FinishedAt        time.Time          `json:"finishedAt"`
	Results           []ListExportResult `json:"results"`
}

// BulkExport exports multiple lists concurrently with rate limiting and progress tracking.
//
// Lists are fetched and enriched one at a time at the configured rate and handed to a pool of
// writer goroutines. A list that cannot be fetched or written is recorded as failed; the
// remaining lists still export. A manifest (export_manifest.json) summarizing every result is
// written to the output directory, with results in the order ids were given.
func (e *Engine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}
	if !slices.Contains(formatter.Formats, opts.Format) {
		if opts.Format != "" {
			return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, opts.Format)
		}
		opts.Format = formatter.FormatJSON
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("cinelist_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		TotalLists:      len(ids),
		OutputDirectory: opts.OutputDir,
		StartedAt:       time.Now().UTC(),
		Results:         make([]ListExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan ListExportJob, len(ids))
	results := make(chan ListExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// every id yields exactly one result, so sends on results never block
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		e.sendProgress(prog, fetchingListsUpdate(len(ids)))
		for i, listID := range ids {
			if err := limiter.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					err = ctx.Err()
				}
				for j := i; j < len(ids); j++ {
					results <- skippedResult(j, ids[j], fmt.Sprintf("Unknown (%s)", ids[j]), err)
				}
				return
			}

			list, err := e.FetchEnriched(ctx, listID)
			if err != nil {
				results <- ListExportResult{
					Index:    i,
					ListID:   listID,
					ListName: fmt.Sprintf("Unknown (%s)", listID),
					Error:    err,
				}
				continue
			}

			job := ListExportJob{Index: i, ListID: listID, List: list}
			jobs <- job
			e.sendProgress(prog, enrichedListUpdate(i+1, len(ids), &job))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.Message = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.ListName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.ListName, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b ListExportResult) int { return a.Index - b.Index })
	result.FinishedAt = time.Now().UTC()

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err == nil {
		err = os.WriteFile(manifestPath, data, 0644)
	}
	if err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}
	return result, nil
}

// exportWorker writes lists from the jobs channel until it closes. Once ctx is done the
// remaining jobs are recorded as skipped.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ListExportJob,
	results chan<- ListExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- skippedResult(job.Index, job.ListID, job.List.Name, err)
			continue
		}
		results <- e.exportSingleList(job, opts)
	}
}

func skippedResult(index int, listID, name string, err error) ListExportResult {
	return ListExportResult{
		Index:    index,
		ListID:   listID,
		ListName: name,
		Error:    fmt.Errorf("export skipped: %w", err),
	}
}

func (e *Engine) exportSingleList(j ListExportJob, opts BulkExportOpts) ListExportResult {
	res := ListExportResult{
		Index:    j.Index,
		ListID:   j.ListID,
		ListName: j.List.Name,
	}

	files, err := formatter.WriteExport(j.List, opts.Format, opts.OutputDir)
	if err != nil {
		e.logger.Warn("list export failed", "list", j.ListID, "format", opts.Format, "error", err)
		res.Error = err
		return res
	}
	res.Files = files
	res.Success = true
	return res
}
