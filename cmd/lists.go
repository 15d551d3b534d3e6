package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinelist/internal/formatter"
	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
	"github.com/desertthunder/cinelist/internal/tasks"
)

// ListsLs reloads the signed-in user's lists and prints them through the catalog filter.
func (r *Runner) ListsLs(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	visibility, err := parseVisibility(cmd.String("visibility"))
	if err != nil {
		return err
	}
	sortKey, err := models.ParseSortKey(cmd.String("sort"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	lists.Reload(ctx)

	filtered := lists.Filtered(models.Filter{
		Search:     cmd.String("search"),
		Visibility: visibility,
		Tags:       cmd.StringSlice("tag"),
		Sort:       sortKey,
	})

	if cmd.Bool("json") {
		return r.writeJSON(filtered, cmd.Bool("pretty"))
	}
	if len(filtered) == 0 {
		return r.writePlain("No lists found.\n")
	}
	return r.renderLists(filtered)
}

// ListsPublic prints every public list on the backend.
func (r *Runner) ListsPublic(ctx context.Context, cmd *cli.Command) error {
	lists, err := r.listCache()
	if err != nil {
		return err
	}

	public := lists.PublicLists(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(public, cmd.Bool("pretty"))
	}
	if len(public) == 0 {
		return r.writePlain("No public lists.\n")
	}
	return r.renderLists(public)
}

// ListsShow fetches one list with its items enriched.
func (r *Runner) ListsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	list, err := lists.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}
	return r.renderList(list)
}

// ListsCreate creates an empty list owned by the signed-in user.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	name, err := requiredArg(cmd, "name")
	if err != nil {
		return err
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	created, err := lists.Create(ctx, models.CreateListRequest{
		Name:        name,
		Description: cmd.String("description"),
		IsPublic:    cmd.Bool("public"),
		Tags:        cmd.StringSlice("tag"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(created, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Created %q (%s)\n", created.Name, created.ID)
}

// ListsUpdate patches only the flags that were given.
func (r *Runner) ListsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}

	var patch models.ListPatch
	if cmd.IsSet("name") {
		name := strings.TrimSpace(cmd.String("name"))
		if name == "" {
			return fmt.Errorf("%w: --name cannot be empty", shared.ErrInvalidFlag)
		}
		patch.Name = &name
	}
	if cmd.IsSet("description") {
		description := cmd.String("description")
		patch.Description = &description
	}
	if cmd.IsSet("public") {
		public := cmd.Bool("public")
		patch.IsPublic = &public
	}
	if cmd.IsSet("tag") {
		tags := cmd.StringSlice("tag")
		patch.Tags = &tags
	}
	if patch == (models.ListPatch{}) {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	updated, err := lists.Update(ctx, id, patch)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(updated, cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Updated %q\n", updated.Name)
}

// ListsDelete removes a list.
func (r *Runner) ListsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	if err := lists.Delete(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", id)
}

// ListsAdd appends a movie unless the list already holds it.
func (r *Runner) ListsAdd(ctx context.Context, cmd *cli.Command) error {
	id, movieID, err := listAndMovieArgs(cmd)
	if err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	updated, err := lists.AddItem(ctx, id, movieID, cmd.String("notes"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Movie %d is in %q (%d movies)\n", movieID, updated.Name, len(updated.Items))
}

// ListsRemove drops a movie from a list.
func (r *Runner) ListsRemove(ctx context.Context, cmd *cli.Command) error {
	id, movieID, err := listAndMovieArgs(cmd)
	if err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	updated, err := lists.RemoveItem(ctx, id, movieID)
	if err != nil {
		return err
	}
	return r.writePlain("✓ %q now has %d movies\n", updated.Name, len(updated.Items))
}

// ListsNotes replaces the notes on one entry.
func (r *Runner) ListsNotes(ctx context.Context, cmd *cli.Command) error {
	id, movieID, err := listAndMovieArgs(cmd)
	if err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	updated, err := lists.UpdateItemNotes(ctx, id, movieID, cmd.StringArg("notes"))
	if err != nil {
		return err
	}
	if !updated.HasMovie(movieID) {
		return fmt.Errorf("%w: movie %d is not in %q", shared.ErrNotFound, movieID, updated.Name)
	}
	return r.writePlain("✓ Updated notes for movie %d\n", movieID)
}

// ListsContaining shows which of the user's lists hold a movie.
func (r *Runner) ListsContaining(ctx context.Context, cmd *cli.Command) error {
	movieID, err := parseMovieID(cmd.StringArg("movie"))
	if err != nil {
		return err
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	lists.Reload(ctx)
	containing := lists.ListsContaining(movieID)

	if cmd.Bool("json") {
		return r.writeJSON(containing, cmd.Bool("pretty"))
	}
	if len(containing) == 0 {
		return r.writePlain("Movie %d is not in any of your lists.\n", movieID)
	}
	return r.renderLists(containing)
}

// ListsExport writes a list, or every list with --all, to disk.
func (r *Runner) ListsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		return r.exportAll(ctx, cmd, format)
	}

	id, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}
	list, err := lists.Get(ctx, id)
	if err != nil {
		return err
	}

	dir := cmd.String("output")
	if dir == "" {
		dir = "."
	}
	files, err := formatter.WriteExport(list, format, dir)
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %q\n", list.Name)
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

func (r *Runner) exportAll(ctx context.Context, cmd *cli.Command, format formatter.Format) error {
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	lists, err := r.listCache()
	if err != nil {
		return err
	}
	lists.Reload(ctx)

	snapshot := lists.Snapshot()
	if len(snapshot) == 0 {
		return r.writePlain("No lists to export.\n")
	}
	ids := make([]string, len(snapshot))
	for i, l := range snapshot {
		ids[i] = l.ID
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := r.tasksEngine().BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done

	if result == nil {
		return err
	}

	r.writePlainHeader("Export Summary")
	r.writePlain("Format:     %s\n", result.Format)
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Exported:   %d/%d\n", result.SuccessfulExports, result.TotalLists)
	if result.FailedExports > 0 {
		r.writePlainln("Failed:")
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  ✗ %s: %s\n", res.ListName, res.Message)
			}
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest:   %s\n", result.ManifestPath)
	}
	return err
}

func (r *Runner) renderLists(lists []models.CustomList) error {
	headers := []string{"Name", "ID", "Movies", "Visibility", "Tags", "Updated"}
	rows := make([][]string, 0, len(lists))
	for _, l := range lists {
		rows = append(rows, []string{
			l.Name,
			l.ID,
			strconv.Itoa(len(l.Items)),
			shared.VisibilityString(l.IsPublic),
			strings.Join(l.Tags, ", "),
			humanize.Time(l.UpdatedAt),
		})
	}
	return r.renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

func (r *Runner) renderList(list *models.CustomList) error {
	r.writePlainHeader(list.Name)
	r.writePlain("ID:          %s\n", list.ID)
	if list.Description != "" {
		r.writePlain("Description: %s\n", list.Description)
	}
	r.writePlain("Visibility:  %s\n", shared.VisibilityString(list.IsPublic))
	if len(list.Tags) > 0 {
		r.writePlain("Tags:        %s\n", strings.Join(list.Tags, ", "))
	}
	r.writePlain("Updated:     %s\n", humanize.Time(list.UpdatedAt))

	if len(list.Items) == 0 {
		return r.writePlainln("This list is empty.")
	}

	headers := []string{"#", "Movie", "Year", "Runtime", "Added", "Notes"}
	rows := make([][]string, 0, len(list.Items))
	for i, item := range list.Items {
		title, runtime := fmt.Sprintf("#%d (details unavailable)", item.MovieID), ""
		if item.Movie != nil {
			title = item.Movie.Title
			runtime = shared.FormatRuntime(item.Movie.Runtime)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			title,
			item.Movie.Year(),
			runtime,
			humanize.Time(item.AddedAt),
			item.Notes,
		})
	}
	r.writePlain("\n")
	return r.renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight})
}

func requiredArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return v, nil
}

func listAndMovieArgs(cmd *cli.Command) (string, int64, error) {
	id, err := requiredArg(cmd, "id")
	if err != nil {
		return "", 0, err
	}
	movieID, err := parseMovieID(cmd.StringArg("movie"))
	if err != nil {
		return "", 0, err
	}
	return id, movieID, nil
}

func parseMovieID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: <movie>", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id %q must be a positive integer", shared.ErrInvalidArgument, s)
	}
	return id, nil
}

// parseVisibility maps all/public/private to the catalog's visibility filter.
func parseVisibility(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return nil, nil
	case "public":
		v := true
		return &v, nil
	case "private":
		v := false
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: visibility %q (want all, public or private)", shared.ErrInvalidFlag, s)
	}
}
