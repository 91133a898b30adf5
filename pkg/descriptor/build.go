package descriptor

import (
	"context"
	"os"
	"path/filepath"
	"time"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/observability"
	"github.com/matzehuels/distmeta/pkg/readme"
)

// BuildOptions configures [Build].
type BuildOptions struct {
	// SkipValidate returns the descriptor even if [Descriptor.Validate] fails.
	SkipValidate bool
	// ReadmeMarker overrides the marker named in the manifest.
	ReadmeMarker string
	// Loaders replaces the built-in manifest loaders.
	Loaders []Loader
}

// ResolveManifest turns path into a manifest file path. A directory is
// searched for the first of [SupportedManifests]; an empty path means the
// current directory.
func ResolveManifest(path string) (string, error) {
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", readError(path, err)
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range SupportedManifests {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", derrors.New(derrors.ErrCodeFileNotFound, "no manifest in %s (looked for %v)", path, SupportedManifests)
}

// Load resolves path and reads it with the matching loader.
func Load(path string, loaders ...Loader) (*Manifest, error) {
	path, err := ResolveManifest(path)
	if err != nil {
		return nil, err
	}
	if err := derrors.ValidateManifestFilename(filepath.Base(path)); err != nil {
		return nil, err
	}
	l, err := DetectLoader(path, loaders...)
	if err != nil {
		return nil, err
	}
	return l.Load(path)
}

// Dir returns the directory relative paths in the manifest resolve against.
func (m *Manifest) Dir() string { return filepath.Dir(m.Path) }

// ReadmePath returns the README location, or "" when the manifest has none.
func (m *Manifest) ReadmePath() string {
	if m.Readme == "" {
		return ""
	}
	return filepath.Join(m.Dir(), filepath.FromSlash(m.Readme))
}

// Build loads the manifest at path and assembles its descriptor.
func Build(ctx context.Context, path string, opts BuildOptions) (*Descriptor, error) {
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, path)
	start := time.Now()

	var d *Descriptor
	m, err := Load(path, opts.Loaders...)
	if err == nil {
		d, err = FromManifest(ctx, m, opts)
	}

	name := ""
	if d != nil {
		name = d.Name
	}
	hooks.OnBuildComplete(ctx, path, name, time.Since(start), err)
	return d, err
}

// FromManifest assembles a descriptor from an already loaded manifest: the
// README is read for the long description, packages are discovered when
// requested, set-valued fields are deduplicated and the result validated.
func FromManifest(ctx context.Context, m *Manifest, opts BuildOptions) (*Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &Descriptor{
		Name:            m.Name,
		Version:         m.Version,
		Description:     m.Description,
		LongDescription: m.LongDescription,
		Author:          m.Author,
		AuthorEmail:     m.AuthorEmail,
		License:         m.License,
		URL:             m.URL,
		TestSuite:       m.TestSuite,
	}

	if m.Readme != "" {
		if err := derrors.ValidatePath(m.Readme); err != nil {
			return nil, err
		}
		marker := m.ReadmeMarker
		if opts.ReadmeMarker != "" {
			marker = opts.ReadmeMarker
		}
		path := m.ReadmePath()
		long, err := readme.ExtractFile(path, readme.Options{Marker: marker})
		if err != nil {
			return nil, err
		}
		observability.Build().OnExtract(ctx, path, len(long))
		d.LongDescription = long
	}

	for _, raw := range m.InstallRequires {
		r, err := ParseRequirement(raw)
		if err != nil {
			return nil, err
		}
		d.InstallRequires = append(d.InstallRequires, r)
	}

	packages := m.Packages
	if m.Find != nil {
		root := m.Dir()
		if m.Find.Where != "" {
			root = filepath.Join(root, filepath.FromSlash(m.Find.Where))
		}
		found, err := FindPackages(root, m.Find.Include, m.Find.Exclude)
		if err != nil {
			return nil, err
		}
		packages = append(append([]string{}, packages...), found...)
	}
	d.Packages = dedupe(packages)
	d.NamespacePackages = dedupe(m.NamespacePackages)

	if !opts.SkipValidate {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	return d, nil
}
