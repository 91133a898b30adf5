package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distmeta/pkg/cache"
	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/observability"
)

// Runner executes pipeline stages with caching.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a pipeline runner. A nil cache disables caching, a nil
// keyer uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete pipeline: build → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	result := &Result{}

	start := time.Now()
	d, hash, hit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Descriptor = d
	result.InputHash = hash
	result.CacheInfo.BuildHit = hit
	result.Stats.BuildTime = time.Since(start)
	result.Stats.Requirements = len(d.InstallRequires)
	result.Stats.Packages = len(d.Packages)
	logger.Info("built descriptor",
		"name", d.Name,
		"version", d.Version,
		"requirements", result.Stats.Requirements,
		"packages", result.Stats.Packages,
		"cached", hit,
		"duration", result.Stats.BuildTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, d, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(start)
	logger.Info("rendered",
		"formats", strings.Join(opts.Formats, ","),
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo loads the manifest, hashes its inputs and returns the
// descriptor together with that hash and whether it came from the cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*descriptor.Descriptor, string, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, opts.Manifest)
	start := time.Now()

	d, hash, hit, err := r.build(ctx, opts)

	name := ""
	if d != nil {
		name = d.Name
	}
	hooks.OnBuildComplete(ctx, opts.Manifest, name, time.Since(start), err)
	return d, hash, hit, err
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards
// the hash and cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*descriptor.Descriptor, error) {
	d, _, _, err := r.BuildWithCacheInfo(ctx, opts)
	return d, err
}

func (r *Runner) build(ctx context.Context, opts Options) (*descriptor.Descriptor, string, bool, error) {
	m, err := descriptor.Load(opts.Manifest)
	if err != nil {
		return nil, "", false, err
	}
	hash, err := InputHash(m, opts)
	if err != nil {
		return nil, "", false, err
	}

	key := r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(formatDescriptor))
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			if d, err := descriptor.ReadJSON(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "artifact")
				return d, hash, true, nil
			}
			r.Logger.Debug("discarding unreadable cached descriptor", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	d, err := descriptor.FromManifest(ctx, m, opts.BuildOptions())
	if err != nil {
		return nil, "", false, err
	}

	var buf bytes.Buffer
	if err := descriptor.WriteJSON(&buf, d); err == nil {
		if err := r.Cache.Set(ctx, key, buf.Bytes(), cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", buf.Len())
		}
	}
	return d, hash, false, nil
}

// InputHash hashes everything a build reads: the manifest bytes, the README
// bytes, the discovered package list and the options that change the
// descriptor. A missing README is left for the build to report.
func InputHash(m *descriptor.Manifest, opts Options) (string, error) {
	var buf bytes.Buffer

	data, err := os.ReadFile(m.Path)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeFileNotFound, err, "read manifest %s", m.Path)
	}
	fmt.Fprintf(&buf, "manifest:%s:%d\n", m.Type, len(data))
	buf.Write(data)

	if p := m.ReadmePath(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			fmt.Fprintf(&buf, "\nreadme:%d\n", len(data))
			buf.Write(data)
		}
	}

	if m.Find != nil {
		root := m.Dir()
		if m.Find.Where != "" {
			root = filepath.Join(root, filepath.FromSlash(m.Find.Where))
		}
		found, err := descriptor.FindPackages(root, m.Find.Include, m.Find.Exclude)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&buf, "\npackages:%s\n", strings.Join(found, ","))
	}

	fmt.Fprintf(&buf, "\nmarker:%s\n", opts.ReadmeMarker)
	return cache.Hash(buf.Bytes()), nil
}

// RenderWithCacheInfo renders d in every requested format and reports
// whether all artifacts came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *descriptor.Descriptor, inputHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := !opts.Refresh && inputHash != ""
	if allCached {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
			data, ok, err := r.Cache.Get(ctx, key)
			if err != nil || !ok {
				allCached = false
				break
			}
			artifacts[format] = data
		}
	}
	if allCached {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := Render(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	if inputHash != "" {
		for format, data := range rendered {
			key := r.Keyer.ArtifactKey(inputHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
				r.Logger.Warn("cache write failed", "format", format, "error", err)
				continue
			}
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
