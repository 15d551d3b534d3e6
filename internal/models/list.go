package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CustomList is a named, user-owned collection of movies.
//
// Items keep insertion order. Uniqueness within a list is by MovieID, not by item ID.
type CustomList struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	CreatedBy   string           `json:"createdBy"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	IsPublic    bool             `json:"isPublic"`
	Tags        []string         `json:"tags,omitempty"`
	Items       []CustomListItem `json:"items"`
}

// CustomListItem is one movie entry inside a list.
type CustomListItem struct {
	ID      string    `json:"id"`
	MovieID int64     `json:"movieId"`
	Movie   *Movie    `json:"movie,omitempty"` // denormalized detail, filled by enrichment
	AddedAt time.Time `json:"addedAt"`
	Notes   string    `json:"notes,omitempty"`
}

// CreateListRequest carries the user-supplied fields for a new list.
type CreateListRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	Tags        []string `json:"tags,omitempty"`
}

// ListPatch is a partial update. Nil fields are omitted from the request and left unchanged.
type ListPatch struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	IsPublic    *bool             `json:"isPublic,omitempty"`
	Tags        *[]string         `json:"tags,omitempty"`
	Items       *[]CustomListItem `json:"items,omitempty"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

// Validate checks the fields required to persist a list.
func (l *CustomList) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(l.CreatedBy) == "" {
		return fmt.Errorf("createdBy is required")
	}

	seen := make(map[int64]bool, len(l.Items))
	for _, item := range l.Items {
		if seen[item.MovieID] {
			return fmt.Errorf("duplicate movie %d in list", item.MovieID)
		}
		seen[item.MovieID] = true
	}
	return nil
}

// Clone returns a deep copy so callers can never mutate a shared snapshot.
func (l CustomList) Clone() CustomList {
	out := l
	if l.Tags != nil {
		out.Tags = slices.Clone(l.Tags)
	}
	if l.Items != nil {
		out.Items = make([]CustomListItem, len(l.Items))
		for i, item := range l.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the item, including its movie detail.
func (i CustomListItem) Clone() CustomListItem {
	out := i
	if i.Movie != nil {
		m := *i.Movie
		m.Genres = slices.Clone(i.Movie.Genres)
		out.Movie = &m
	}
	return out
}

// IndexOf returns the position of the item for movieID, or -1.
func (l *CustomList) IndexOf(movieID int64) int {
	return slices.IndexFunc(l.Items, func(item CustomListItem) bool {
		return item.MovieID == movieID
	})
}

// HasMovie reports whether the list already holds movieID.
func (l *CustomList) HasMovie(movieID int64) bool {
	return l.IndexOf(movieID) >= 0
}

// Apply merges the non-nil fields of the patch into the list.
func (p ListPatch) Apply(l *CustomList) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.IsPublic != nil {
		l.IsPublic = *p.IsPublic
	}
	if p.Tags != nil {
		l.Tags = slices.Clone(*p.Tags)
	}
	if p.Items != nil {
		l.Items = slices.Clone(*p.Items)
	}
	if p.UpdatedAt != nil {
		l.UpdatedAt = *p.UpdatedAt
	}
}

// CloneLists deep-copies a collection of lists.
func CloneLists(lists []CustomList) []CustomList {
	out := make([]CustomList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}
