package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setcast/internal/destinations"
	"github.com/desertthunder/setcast/internal/repositories"
	"github.com/desertthunder/setcast/internal/shared"
	"github.com/desertthunder/setcast/internal/songlist"
	"github.com/desertthunder/setcast/internal/status"
	"github.com/desertthunder/setcast/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	registry   *destinations.Registry
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Registry   *destinations.Registry
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
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Registry == nil {
		opts.Registry = destinations.NewRegistry(
			destinations.NewMixcloud(opts.Config.Destinations.Mixcloud, opts.Config.Upload, opts.Logger),
			destinations.NewRadioco(opts.Config.Destinations.Radioco, opts.Config.Upload, opts.HTTPClient, opts.Logger),
		)
	}

	return &Runner{
		config:     opts.Config,
		registry:   opts.Registry,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, processCommand, watchCommand, parseCommand, statusCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore opens the status store rooted at the configured status directory.
func (r *Runner) openStore() (*status.Store, error) {
	return status.NewStore(r.config.Storage.StatusDir)
}

// openHistory opens the sqlite upload history. The caller closes the
// returned database handle.
func (r *Runner) openHistory() (*sql.DB, *repositories.UploadRepository, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	return db, repositories.NewUploadRepository(db), nil
}

// buildEngine assembles the upload engine from the runner's configuration.
// History is optional; the engine runs without it when the database cannot
// be opened.
func (r *Runner) buildEngine() (*tasks.UploadEngine, func(), error) {
	store, err := r.openStore()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var history *repositories.UploadRepository
	if db, repo, err := r.openHistory(); err != nil {
		r.logger.Warn("upload history unavailable", "error", err)
	} else {
		history = repo
		cleanup = func() { db.Close() }
	}

	engine := tasks.NewUploadEngine(tasks.EngineOpts{
		Config:   r.config,
		Parser:   songlist.NewDispatcher(r.logger),
		Registry: r.registry,
		Store:    store,
		History:  history,
		Archiver: tasks.NewFSArchiver(r.config.Storage.ArchiveDir),
		Logger:   r.logger,
	})
	return engine, cleanup, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
