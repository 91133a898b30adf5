package cli

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distmeta/internal/config"
	"github.com/matzehuels/distmeta/pkg/cache"
	"github.com/matzehuels/distmeta/pkg/integrations/pypi"
	"github.com/matzehuels/distmeta/pkg/observability"
	"github.com/matzehuels/distmeta/pkg/pipeline"
	"github.com/matzehuels/distmeta/pkg/store"
)

// InitOptions are the command-line overrides applied on top of the loaded
// configuration.
type InitOptions struct {
	Verbose bool
	NoCache bool
}

// App is the process-wide environment every command needs: configuration,
// the cache backend and the logger.
type App struct {
	Logger *log.Logger
	Config *config.Config
	Cache  cache.Cache

	once sync.Once
	err  error
}

// NewApp returns an uninitialized App logging to logger.
func NewApp(logger *log.Logger) *App {
	if logger == nil {
		logger = log.Default()
	}
	return &App{Logger: logger}
}

// Init loads configuration, sets the log level, opens the cache and
// registers the logging hooks. It runs once; later calls return the first
// result and ignore their options.
func (a *App) Init(ctx context.Context, opts InitOptions) error {
	a.once.Do(func() {
		a.err = a.init(ctx, opts)
	})
	return a.err
}

func (a *App) init(ctx context.Context, opts InitOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.Config = cfg

	level := cfg.Level()
	if opts.Verbose {
		level = log.DebugLevel
	}
	a.Logger.SetLevel(level)
	if cfg.File != "" {
		a.Logger.Debug("loaded config", "file", cfg.File)
	}

	if opts.NoCache {
		cfg.Cache.Backend = config.BackendNone
	}
	c, err := cfg.OpenCache(ctx)
	if err != nil {
		a.Logger.Warn("cache unavailable, continuing without it", "backend", cfg.Cache.Backend, "error", err)
		c = cache.NewNullCache()
	}
	a.Cache = c

	hooks := &logHooks{logger: a.Logger}
	observability.SetBuildHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	return nil
}

// Close closes the cache. It is safe to call on an App that never
// initialized.
func (a *App) Close() error {
	if a.Cache == nil {
		return nil
	}
	return a.Cache.Close()
}

func (a *App) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(a.Cache, a.Config.Keyer(), a.Logger)
}

// indexClient returns a client for indexURL, or for the configured index
// when indexURL is empty.
func (a *App) indexClient(indexURL string) *pypi.Client {
	cfg := *a.Config
	if indexURL != "" {
		cfg.Index.URL = indexURL
	}
	return cfg.IndexClient(a.Cache)
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	return a.Config.OpenStore(ctx)
}
