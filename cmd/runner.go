package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/cinelist/internal/cache"
	"github.com/desertthunder/cinelist/internal/catalog"
	"github.com/desertthunder/cinelist/internal/models"
	"github.com/desertthunder/cinelist/internal/services"
	"github.com/desertthunder/cinelist/internal/shared"
	"github.com/desertthunder/cinelist/internal/tasks"
)

// SessionStore is the signed-in identity plus the operations the auth commands need.
type SessionStore interface {
	services.SessionProvider
	Load() (*models.User, error)
	Save(user models.User) error
	Clear() error
	Path() string
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store, metadata client, engine and cache are built on first use so commands that never
// talk to a backend (setup, serve) do not need one configured.
type Runner struct {
	config     *shared.Config
	configPath string
	store      services.ListStore
	metadata   services.MetadataService
	session    SessionStore
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.Engine
	lists      *cache.ListCache
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      services.ListStore
	Metadata   services.MetadataService
	Session    SessionStore
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		metadata:   opts.Metadata,
		session:    opts.Session,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serveCommand, authCommand, listsCommand, moviesCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = nil
	r.lists = nil
}

func (r *Runner) listStore() services.ListStore {
	if r.store == nil {
		r.store = services.NewRESTStore(r.config.Store.BaseURL, r.httpClient)
	}
	return r.store
}

func (r *Runner) metadataService() services.MetadataService {
	if r.metadata != nil {
		return r.metadata
	}

	tmdb := r.config.TMDB
	svc, err := services.NewTMDBService(tmdb.APIKey, tmdb.BaseURL, tmdb.Language,
		services.WithReadAccessToken(tmdb.ReadAccessToken),
		services.WithRateLimit(tmdb.RequestsPerSecond),
		services.WithTimeout(time.Duration(tmdb.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		r.logger.Warn("movie details disabled", "error", err)
		r.metadata = services.NoMetadata{Err: err}
		return r.metadata
	}
	r.metadata = svc
	return r.metadata
}

func (r *Runner) sessionStore() (SessionStore, error) {
	if r.session != nil {
		return r.session, nil
	}
	s, err := services.NewFileSession(r.config.Session.Path)
	if err != nil {
		return nil, err
	}
	r.session = s
	return r.session, nil
}

func (r *Runner) tasksEngine() *tasks.Engine {
	if r.engine == nil {
		r.engine = tasks.NewEngine(r.listStore(), r.metadataService(), shared.WithLogger(r.logger, "component", "engine"))
	}
	return r.engine
}

func (r *Runner) listCache() (*cache.ListCache, error) {
	if r.lists != nil {
		return r.lists, nil
	}
	session, err := r.sessionStore()
	if err != nil {
		return nil, err
	}
	r.lists = cache.New(r.listStore(), r.tasksEngine(), session,
		cache.WithCatalog(catalog.New(r.config.Catalog.Locale)),
		cache.WithLogger(shared.WithLogger(r.logger, "component", "cache")),
	)
	return r.lists, nil
}

// requireUser returns the signed-in user or [shared.ErrUnauthenticated].
func (r *Runner) requireUser(ctx context.Context) (*models.User, error) {
	session, err := r.sessionStore()
	if err != nil {
		return nil, err
	}
	user, ok := session.CurrentUser(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: run `cinelist auth login <email>` first", shared.ErrUnauthenticated)
	}
	return user, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable writes a table to the runner output. Colour is used only on a terminal.
func (r *Runner) renderTable(headers []string, rows [][]string, aligns []columnAlignment) error {
	columns := len(headers)
	if columns == 0 {
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	if r.colorize() {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgHiYellow}
	}

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				tr[i] = row[i]
			} else {
				tr[i] = ""
			}
		}
		tw.AppendRow(tr)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return r.writePlain("%s\n", tw.Render())
}

func (r *Runner) colorize() bool {
	file, ok := r.output.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
