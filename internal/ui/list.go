package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

var (
	_ list.Item = customListItem{}
	_ list.Item = movieItem{}
)

// customListItem wraps [models.CustomList] to implement [list.Item].
type customListItem struct {
	list models.CustomList
}

func (i customListItem) FilterValue() string {
	return i.list.Name + " " + strings.Join(i.list.Tags, " ")
}
func (i customListItem) Title() string { return i.list.Name }
func (i customListItem) Description() string {
	desc := fmt.Sprintf("%d movies • %s", len(i.list.Items), shared.VisibilityString(i.list.IsPublic))
	if len(i.list.Tags) > 0 {
		desc = fmt.Sprintf("%s • #%s", desc, strings.Join(i.list.Tags, " #"))
	}
	if i.list.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.list.Description)
	}
	return desc
}

// movieItem wraps an enriched [models.CustomListItem] to implement [list.Item].
type movieItem struct {
	item models.CustomListItem
}

func (i movieItem) FilterValue() string { return i.Title() }
func (i movieItem) Title() string {
	if i.item.Movie == nil {
		return fmt.Sprintf("Movie #%d (details unavailable)", i.item.MovieID)
	}
	if year := i.item.Movie.Year(); year != "" {
		return fmt.Sprintf("%s (%s)", i.item.Movie.Title, year)
	}
	return i.item.Movie.Title
}
func (i movieItem) Description() string {
	parts := []string{}
	if i.item.Movie != nil && i.item.Movie.Runtime > 0 {
		parts = append(parts, shared.FormatRuntime(i.item.Movie.Runtime))
	}
	if i.item.Movie != nil && len(i.item.Movie.Genres) > 0 {
		parts = append(parts, strings.Join(i.item.Movie.Genres, ", "))
	}
	if i.item.Notes != "" {
		parts = append(parts, i.item.Notes)
	}
	if len(parts) == 0 {
		return "added " + i.item.AddedAt.Format("2006-01-02")
	}
	return strings.Join(parts, " • ")
}

func toListItems(lists []models.CustomList) []list.Item {
	items := make([]list.Item, len(lists))
	for i, l := range lists {
		items[i] = customListItem{list: l}
	}
	return items
}

func toMovieItems(entries []models.CustomListItem) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = movieItem{item: e}
	}
	return items
}
