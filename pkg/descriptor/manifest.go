package descriptor

import (
	"errors"
	"io/fs"
	"path/filepath"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// DefaultReadme is read for the long description when a setup manifest
// names neither a readme nor a literal long_description.
const DefaultReadme = "README.txt"

// Manifest holds the static literals of a manifest file before the long
// description has been derived.
type Manifest struct {
	Name              string
	Version           string
	Description       string
	LongDescription   string // literal text; used when Readme is empty
	Readme            string // path relative to the manifest directory
	ReadmeMarker      string // overrides the default table-of-contents marker
	InstallRequires   []string
	Author            string
	AuthorEmail       string
	License           string
	URL               string
	TestSuite         string
	Packages          []string
	NamespacePackages []string
	Find              *FindSpec // package discovery, merged into Packages

	Path string // file the manifest was loaded from
	Type string // loader type that produced it
}

// FindSpec configures package discovery, like setuptools find_packages().
type FindSpec struct {
	Where   string   `toml:"where" yaml:"where"`
	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// Loader reads a manifest file of one format.
type Loader interface {
	// Load reads the manifest at path.
	Load(path string) (*Manifest, error)
	// Supports reports whether this loader handles the given filename.
	Supports(filename string) bool
	// Type returns the manifest type identifier (e.g., "setup.toml").
	Type() string
}

// Loaders returns every built-in loader in detection order.
func Loaders() []Loader {
	return []Loader{&SetupTOML{}, &Pyproject{}, &SetupYAML{}}
}

// DetectLoader finds a loader that supports the given file path.
// With no loaders given, the built-in ones are tried.
func DetectLoader(path string, loaders ...Loader) (Loader, error) {
	if len(loaders) == 0 {
		loaders = Loaders()
	}
	name := filepath.Base(path)
	for _, l := range loaders {
		if l.Supports(name) {
			return l, nil
		}
	}
	return nil, derrors.New(derrors.ErrCodeUnsupported, "unsupported manifest: %s", name)
}

// SupportedManifests lists the file names DetectLoader recognizes, in the
// order a directory is searched.
var SupportedManifests = []string{"setup.toml", "pyproject.toml", "setup.yaml", "setup.yml"}

func decodeError(path string, err error) error {
	return derrors.Wrap(derrors.ErrCodeInvalidManifest, err, "%s", filepath.Base(path))
}

func readError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return derrors.Wrap(derrors.ErrCodeFileNotFound, err, "manifest %s", path)
	}
	return derrors.Wrap(derrors.ErrCodeInvalidPath, err, "manifest %s", path)
}
