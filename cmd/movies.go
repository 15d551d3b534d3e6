package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

type movieView struct {
	*models.Movie
	Lists []string `json:"lists,omitempty"`
}

// MoviesShow resolves one movie id through the metadata service.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	movieID, err := parseMovieID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	movie, err := r.metadataService().Resolve(ctx, movieID)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrMetadata, err)
	}

	view := movieView{Movie: movie}
	if cmd.Bool("lists") {
		if _, err := r.requireUser(ctx); err != nil {
			return err
		}
		lists, err := r.listCache()
		if err != nil {
			return err
		}
		lists.Reload(ctx)
		for _, l := range lists.ListsContaining(movieID) {
			view.Lists = append(view.Lists, l.Name)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	title := movie.Title
	if year := movie.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	r.writePlainHeader(title)
	r.writePlain("TMDB ID:  %d\n", movie.ID)
	r.writePlain("Runtime:  %s\n", shared.FormatRuntime(movie.Runtime))
	if len(movie.Genres) > 0 {
		r.writePlain("Genres:   %s\n", strings.Join(movie.Genres, ", "))
	}
	if movie.VoteAverage > 0 {
		r.writePlain("Rating:   %.1f/10\n", movie.VoteAverage)
	}
	if movie.Overview != "" {
		r.writePlainln("%s", movie.Overview)
	}
	if cmd.Bool("lists") {
		if len(view.Lists) == 0 {
			r.writePlain("\nNot in any of your lists.\n")
		} else {
			r.writePlain("\nIn your lists: %s\n", strings.Join(view.Lists, ", "))
		}
	}
	return nil
}
