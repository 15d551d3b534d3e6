package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/shared"
)

const defaultTMDBBaseURL string = "https://api.themoviedb.org/3"

type tmdbGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TMDBMovie is the subset of the TMDB movie details payload the catalog keeps.
type TMDBMovie struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Overview    string      `json:"overview"`
	ReleaseDate string      `json:"release_date"`
	Runtime     int         `json:"runtime"`
	PosterPath  string      `json:"poster_path"`
	VoteAverage float64     `json:"vote_average"`
	Genres      []tmdbGenre `json:"genres"`
}

// ToMovie maps the TMDB payload onto [models.Movie].
func (m TMDBMovie) ToMovie() *models.Movie {
	movie := &models.Movie{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		Runtime:     m.Runtime,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
	}
	for _, g := range m.Genres {
		movie.Genres = append(movie.Genres, g.Name)
	}
	return movie
}

// TMDBService implements [MetadataService] against the TMDB API.
type TMDBService struct {
	apiKey     string
	token      string
	baseURL    string
	language   string
	limiter    *rate.Limiter
	httpClient *http.Client
}

var _ MetadataService = (*TMDBService)(nil)

// TMDBOption configures a TMDBService.
type TMDBOption func(*TMDBService)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) TMDBOption {
	return func(s *TMDBService) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithReadAccessToken authenticates with a v4 bearer token instead of the api_key parameter.
func WithReadAccessToken(token string) TMDBOption {
	return func(s *TMDBService) { s.token = strings.TrimSpace(token) }
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables pacing.
func WithRateLimit(rps float64) TMDBOption {
	return func(s *TMDBService) {
		if rps <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		burst := max(int(rps), 1)
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-request timeout of the HTTP client.
func WithTimeout(d time.Duration) TMDBOption {
	return func(s *TMDBService) {
		if d > 0 {
			c := *s.httpClient
			c.Timeout = d
			s.httpClient = &c
		}
	}
}

// NewTMDBService creates a metadata client. Either apiKey or a read access token option is required.
func NewTMDBService(apiKey, baseURL, language string, opts ...TMDBOption) (*TMDBService, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultTMDBBaseURL
	}
	s := &TMDBService{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		limiter:    rate.NewLimiter(rate.Inf, 0),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.apiKey == "" && s.token == "" {
		return nil, fmt.Errorf("%w: tmdb api key or read access token required", shared.ErrMissingCredentials)
	}

	if s.token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.token, TokenType: "Bearer"})
		s.httpClient = &http.Client{
			Timeout:   s.httpClient.Timeout,
			Transport: &oauth2.Transport{Source: src, Base: s.httpClient.Transport},
		}
	}
	return s, nil
}

// Resolve calls GET /movie/{id}.
func (s *TMDBService) Resolve(ctx context.Context, movieID int64) (*models.Movie, error) {
	if movieID <= 0 {
		return nil, fmt.Errorf("%w: movie id %d", shared.ErrInvalidInput, movieID)
	}

	var payload TMDBMovie
	endpoint := "/movie/" + strconv.FormatInt(movieID, 10)
	if err := s.doRequest(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.ToMovie(), nil
}

func (s *TMDBService) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", shared.ErrMetadata, err)
	}

	params := url.Values{}
	if s.token == "" {
		params.Set("api_key", s.apiKey)
	}
	if s.language != "" {
		params.Set("language", s.language)
	}
	endpointURL := s.baseURL + endpoint
	if len(params) > 0 {
		endpointURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrMetadata, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrMetadata, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w: %s", shared.ErrMetadata, shared.ErrNotFound, endpoint)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %s rate limited", shared.ErrMetadata, shared.ErrServiceUnavailable, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var errResp struct {
			StatusMessage string `json:"status_message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.StatusMessage != "" {
			return fmt.Errorf("%w: tmdb %s returned %d: %s", shared.ErrMetadata, endpoint, resp.StatusCode, errResp.StatusMessage)
		}
		return fmt.Errorf("%w: tmdb %s returned %d", shared.ErrMetadata, endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrMetadata, err)
	}
	return nil
}
