// Package cli implements the distmeta command-line interface.
//
// distmeta builds the static metadata of a Python distribution from a
// declarative manifest (setup.toml, pyproject.toml or setup.yaml) and the
// project README, then exports, checks, publishes or serves it.
//
// # Commands
//
//   - describe: extract the long description from a README
//   - build: build the descriptor and write it as JSON, YAML, PKG-INFO, DOT, SVG or PNG
//   - validate: report every problem in a manifest
//   - check: resolve install requirements against a package index
//   - graph: render the distribution graph
//   - show: print a summary, or browse it interactively
//   - publish: store a descriptor locally or on a distmeta server
//   - serve: run a PyPI-style JSON index over published descriptors
//   - cache: manage the response and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/pkg/buildinfo"
)

const appName = "distmeta"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	app     *App
	verbose bool
	noCache bool
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)
	return &CLI{
		Logger: logger,
		app:    NewApp(logger),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Every subcommand runs after [App.Init], so configuration, the cache and
// the observability hooks are ready exactly once per process.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "distmeta builds Python distribution metadata from a manifest",
		Long: `distmeta reads a declarative setup manifest and the project README and
produces the complete static metadata of a Python distribution: name,
version, long description, install requirements and packages.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Init(cmd.Context(), InitOptions{
				Verbose: c.verbose,
				NoCache: c.noCache,
			})
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the response and artifact cache")

	root.AddCommand(c.describeCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Close releases the cache opened by the first command.
func (c *CLI) Close() error {
	return c.app.Close()
}
