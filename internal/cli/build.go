package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	"github.com/matzehuels/distmeta/pkg/pipeline"
)

// buildFlags holds the flags shared by build, graph and show.
type buildFlags struct {
	formats    string
	output     string
	noValidate bool
	marker     string
	detailed   bool
	refresh    bool
}

func (f *buildFlags) options(manifest string, formats []string) pipeline.Options {
	return pipeline.Options{
		Manifest:     manifest,
		Formats:      formats,
		SkipValidate: f.noValidate,
		ReadmeMarker: f.marker,
		Detailed:     f.detailed,
		Refresh:      f.refresh,
	}
}

func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags buildFlags
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "build [manifest]",
		Short: "Build the distribution descriptor",
		Long: `Build the distribution descriptor from a manifest and its README.

The manifest argument is a setup.toml, pyproject.toml or setup.yaml file, or
a directory containing one (default: the current directory).

A single format without --output is written to stdout. Otherwise each format
is written to a file named after the distribution (PKG-INFO for pkginfo):
into the --output directory, or to --output itself for a single format.`,
		Example: `  distmeta build
  distmeta build examples/peak-rules -f pkginfo > PKG-INFO
  distmeta build -f json,yaml,pkginfo,svg -o dist/
  distmeta build --watch -f pkginfo -o PKG-INFO`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			opts := flags.options(manifestArg(args), formats)

			ctx := withLogger(cmd.Context(), c.Logger)
			runner := c.app.newRunner()
			build := func(ctx context.Context) error {
				return c.runBuild(ctx, runner, opts, flags.output, cmd.OutOrStdout())
			}
			if watch {
				return c.watch(ctx, opts.Manifest, build)
			}
			return build(ctx)
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", pipeline.DefaultFormat, "output formats, comma-separated: "+strings.Join(pipeline.FormatNames, ", "))
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file or directory")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "rebuild when the manifest, README or packages change")
	addBuildFlags(cmd, &flags)

	return cmd
}

func addBuildFlags(cmd *cobra.Command, flags *buildFlags) {
	cmd.Flags().BoolVar(&flags.noValidate, "no-validate", false, "skip descriptor validation")
	cmd.Flags().StringVar(&flags.marker, "marker", "", "README marker that ends the long description (default: from manifest, else \".. contents::\")")
	cmd.Flags().BoolVar(&flags.detailed, "detailed", false, "label graph nodes with constraints and kinds")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
}

func (c *CLI) runBuild(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string, stdout io.Writer) error {
	opts.Logger = loggerFromContext(ctx)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(stdout, result, opts.Formats, output)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	d := result.Descriptor
	printSuccess("Built %s %s", StyleHighlight.Render(d.Name), d.Version)
	printStats(result.Stats.Requirements, result.Stats.Packages, result.CacheHit())
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// writeArtifacts writes the rendered formats and returns the files it
// created. A single format with no output goes to stdout.
func writeArtifacts(stdout io.Writer, result *pipeline.Result, formats []string, output string) ([]string, error) {
	if len(formats) == 1 && output == "" {
		_, err := stdout.Write(result.Artifacts[formats[0]])
		return nil, err
	}

	dir := output
	if len(formats) == 1 && !isDir(output) && !strings.HasSuffix(output, string(os.PathSeparator)) {
		if err := writeFile(output, result.Artifacts[formats[0]]); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := filepath.Join(dir, artifactName(result.Descriptor, format))
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactName is PKG-INFO for the pkginfo format and <name>-<version><ext>
// otherwise.
func artifactName(d *descriptor.Descriptor, format string) string {
	if format == pipeline.FormatPKGInfo {
		return "PKG-INFO"
	}
	base := strings.ReplaceAll(d.Name, "/", "_")
	if d.Version != "" {
		base += "-" + d.Version
	}
	return base + pipeline.Extension(format)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// parseFormats splits a comma-separated format list, dropping blanks and
// duplicates.
func parseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return []string{pipeline.DefaultFormat}
	}
	return formats
}

func manifestArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}
