package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

// ListRepository implements [models.Repository] for [models.CustomList] persistence.
//
// A list row carries its tags as a JSON array; items live in custom_list_items keyed by
// (list_id, position) and are always rewritten as a whole.
type ListRepository struct {
	db *sql.DB
}

// NewListRepository creates a new [ListRepository] with the given database connection
func NewListRepository(db *sql.DB) *ListRepository {
	return &ListRepository{db: db}
}

const listColumns = `id, name, description, created_by, is_public, tags, created_at, updated_at`

// Create inserts a new list and its items. Any incoming ID is replaced with a generated one.
func (r *ListRepository) Create(list *models.CustomList) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "custom_lists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now().UTC()
	list.ID = shared.GenerateID()
	if list.CreatedAt.IsZero() {
		list.CreatedAt = now
	}
	if list.UpdatedAt.IsZero() {
		list.UpdatedAt = list.CreatedAt
	}
	if list.Items == nil {
		list.Items = []models.CustomListItem{}
	}

	tags, err := encodeTags(list.Tags)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO custom_lists (id, sequence, name, description, created_by, is_public, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(query, list.ID, sequence, list.Name, list.Description, list.CreatedBy, list.IsPublic, tags, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		return constraintErr("failed to insert list", err)
	}

	if err := writeItems(tx, list.ID, list.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit list: %w", err)
	}
	return nil
}

// Get retrieves a list with its items by ID, excluding soft-deleted lists
func (r *ListRepository) Get(id string) (*models.CustomList, error) {
	query := `SELECT ` + listColumns + ` FROM custom_lists WHERE id = ? AND deleted_at IS NULL`

	list, err := scanList(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: list %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if list.Items, err = r.items(list.ID); err != nil {
		return nil, err
	}
	return list, nil
}

// Update overwrites the stored list, replacing its items wholesale.
func (r *ListRepository) Update(list *models.CustomList) error {
	if err := list.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if list.UpdatedAt.IsZero() {
		list.UpdatedAt = time.Now().UTC()
	}
	if list.Items == nil {
		list.Items = []models.CustomListItem{}
	}

	tags, err := encodeTags(list.Tags)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE custom_lists
		SET name = ?, description = ?, is_public = ?, tags = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := tx.Exec(query, list.Name, list.Description, list.IsPublic, tags, list.UpdatedAt, list.ID)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	if err := expectOneRow(result, "list", list.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM custom_list_items WHERE list_id = ?`, list.ID); err != nil {
		return fmt.Errorf("failed to clear list items: %w", err)
	}
	if err := writeItems(tx, list.ID, list.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit list: %w", err)
	}
	return nil
}

// Delete soft-deletes a list by ID. Its items stay until the row is purged.
func (r *ListRepository) Delete(id string) error {
	query := `
		UPDATE custom_lists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return expectOneRow(result, "list", id)
}

// List retrieves every list matching the criteria in insertion order, items included.
//
// Supported criteria: "created_by" (string) and "is_public" (bool).
func (r *ListRepository) List(criteria map[string]any) ([]*models.CustomList, error) {
	query := `SELECT ` + listColumns + ` FROM custom_lists WHERE deleted_at IS NULL`
	args := []any{}

	if owner, ok := criteria["created_by"].(string); ok && owner != "" {
		query += " AND created_by = ?"
		args = append(args, owner)
	}
	if public, ok := criteria["is_public"].(bool); ok {
		query += " AND is_public = ?"
		args = append(args, public)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}

	lists := []*models.CustomList{}
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	// items are loaded after the cursor is closed; an in-memory database has one connection
	for _, list := range lists {
		if list.Items, err = r.items(list.ID); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

func (r *ListRepository) items(listID string) ([]models.CustomListItem, error) {
	query := `
		SELECT id, movie_id, movie, added_at, notes
		FROM custom_list_items
		WHERE list_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query list items: %w", err)
	}
	defer rows.Close()

	items := []models.CustomListItem{}
	for rows.Next() {
		var (
			item  models.CustomListItem
			movie sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.MovieID, &movie, &item.AddedAt, &item.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		if movie.Valid && movie.String != "" {
			var m models.Movie
			if err := json.Unmarshal([]byte(movie.String), &m); err != nil {
				return nil, fmt.Errorf("failed to decode movie for item %s: %w", item.ID, err)
			}
			item.Movie = &m
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func writeItems(tx *sql.Tx, listID string, items []models.CustomListItem) error {
	query := `
		INSERT INTO custom_list_items (list_id, position, id, movie_id, movie, added_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = shared.GenerateID()
		}
		if item.AddedAt.IsZero() {
			item.AddedAt = time.Now().UTC()
		}

		var movie sql.NullString
		if item.Movie != nil {
			data, err := json.Marshal(item.Movie)
			if err != nil {
				return fmt.Errorf("failed to encode movie %d: %w", item.MovieID, err)
			}
			movie = sql.NullString{String: string(data), Valid: true}
		}

		if _, err := tx.Exec(query, listID, i, item.ID, item.MovieID, movie, item.AddedAt, item.Notes); err != nil {
			return constraintErr("failed to insert list item", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*models.CustomList, error) {
	var (
		list models.CustomList
		tags string
	)

	err := row.Scan(&list.ID, &list.Name, &list.Description, &list.CreatedBy, &list.IsPublic, &tags, &list.CreatedAt, &list.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan list: %w", err)
	}

	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &list.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags for list %s: %w", list.ID, err)
		}
	}
	if len(list.Tags) == 0 {
		list.Tags = nil
	}
	return &list, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(data), nil
}
