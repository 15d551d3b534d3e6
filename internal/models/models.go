// package models defines the data model for the movie catalog
package models

import (
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T any] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// User is the signed-in identity that owns custom lists.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields required to persist a user.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email: %s", u.Email)
	}
	return nil
}

// Movie is the detail record returned by the metadata service.
type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
	Runtime     int      `json:"runtime,omitempty"` // minutes
	PosterPath  string   `json:"posterPath,omitempty"`
	VoteAverage float64  `json:"voteAverage,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// Year returns the release year, or an empty string when the release date is unknown.
func (m *Movie) Year() string {
	if m == nil || len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}
