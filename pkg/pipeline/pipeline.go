// Package pipeline runs the build → render pipeline shared by the CLI and
// the server.
//
// The pipeline consists of two stages:
//
//  1. Build: load a manifest, extract the README long description and
//     assemble a validated [descriptor.Descriptor]
//  2. Render: write the descriptor in the requested formats (JSON, YAML,
//     PKG-INFO, DOT, SVG, PNG)
//
// Both stages are cached under a hash of their inputs: the manifest bytes,
// the README bytes and the discovered package list. Editing any of them
// produces a new key.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Manifest: "setup.toml",
//	    Formats:  []string{"pkginfo", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("PKG-INFO", result.Artifacts["pkginfo"], 0o644)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distmeta/pkg/cache"
	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// Format constants for output formats.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatPKGInfo = "pkginfo"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
)

// formatDescriptor keys the cached build stage. It is not a user format.
const formatDescriptor = "descriptor"

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatJSON

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatYAML:    true,
	FormatPKGInfo: true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatPNG:     true,
}

// FormatNames lists the supported formats in display order.
var FormatNames = []string{FormatJSON, FormatYAML, FormatPKGInfo, FormatDOT, FormatSVG, FormatPNG}

// Extension returns the conventional file name suffix for a format.
func Extension(format string) string {
	switch format {
	case FormatPKGInfo:
		return ""
	case FormatYAML:
		return ".yaml"
	default:
		return "." + format
	}
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Manifest is a manifest file or a directory containing one.
	Manifest     string   `json:"manifest"`
	Formats      []string `json:"formats,omitempty"`
	SkipValidate bool     `json:"skip_validate,omitempty"`
	ReadmeMarker string   `json:"readme_marker,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"` // graph labels carry constraints and kinds
	Refresh      bool     `json:"refresh,omitempty"`  // bypass cached results

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Descriptor is the built distribution descriptor.
	Descriptor *descriptor.Descriptor

	// InputHash is the content hash of the build inputs.
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// CacheHit reports whether nothing had to be rebuilt.
func (r *Result) CacheHit() bool {
	return r.CacheInfo.BuildHit && r.CacheInfo.RenderHit
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Requirements int
	Packages     int
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // descriptor came from cache
	RenderHit bool // every artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return derrors.New(derrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the formats and applies defaults. Calling it
// more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// BuildOptions returns the descriptor build options for this run.
func (o *Options) BuildOptions() descriptor.BuildOptions {
	return descriptor.BuildOptions{
		SkipValidate: o.SkipValidate,
		ReadmeMarker: o.ReadmeMarker,
	}
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		SkipValidate: o.SkipValidate,
		Detailed:     o.Detailed,
	}
}
