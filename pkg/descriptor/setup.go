package descriptor

import (
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// setupFile is the on-disk shape shared by setup.toml and setup.yaml. Keys
// follow the setup() keyword arguments.
type setupFile struct {
	Name              string    `toml:"name" yaml:"name"`
	Version           string    `toml:"version" yaml:"version"`
	Description       string    `toml:"description" yaml:"description"`
	LongDescription   string    `toml:"long_description" yaml:"long_description"`
	Readme            *string   `toml:"readme" yaml:"readme"`
	ReadmeMarker      string    `toml:"readme_marker" yaml:"readme_marker"`
	InstallRequires   []string  `toml:"install_requires" yaml:"install_requires"`
	Author            string    `toml:"author" yaml:"author"`
	AuthorEmail       string    `toml:"author_email" yaml:"author_email"`
	License           string    `toml:"license" yaml:"license"`
	URL               string    `toml:"url" yaml:"url"`
	TestSuite         string    `toml:"test_suite" yaml:"test_suite"`
	Packages          []string  `toml:"packages" yaml:"packages"`
	NamespacePackages []string  `toml:"namespace_packages" yaml:"namespace_packages"`
	FindPackages      *FindSpec `toml:"find_packages" yaml:"find_packages"`
}

func (f *setupFile) manifest(path, typ string) *Manifest {
	m := &Manifest{
		Name:              f.Name,
		Version:           f.Version,
		Description:       f.Description,
		LongDescription:   f.LongDescription,
		ReadmeMarker:      f.ReadmeMarker,
		InstallRequires:   f.InstallRequires,
		Author:            f.Author,
		AuthorEmail:       f.AuthorEmail,
		License:           f.License,
		URL:               f.URL,
		TestSuite:         f.TestSuite,
		Packages:          f.Packages,
		NamespacePackages: f.NamespacePackages,
		Find:              f.FindPackages,
		Path:              path,
		Type:              typ,
	}
	switch {
	case f.Readme != nil:
		// An explicit empty readme disables README extraction.
		m.Readme = *f.Readme
	case f.LongDescription == "":
		m.Readme = DefaultReadme
	}
	return m
}

// SetupTOML loads setup.toml manifests.
type SetupTOML struct{}

func (l *SetupTOML) Type() string              { return "setup.toml" }
func (l *SetupTOML) Supports(name string) bool { return name == "setup.toml" }

func (l *SetupTOML) Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	var f setupFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, decodeError(path, err)
	}
	return f.manifest(path, l.Type()), nil
}

// SetupYAML loads setup.yaml and setup.yml manifests.
type SetupYAML struct{}

func (l *SetupYAML) Type() string { return "setup.yaml" }
func (l *SetupYAML) Supports(name string) bool {
	return name == "setup.yaml" || name == "setup.yml"
}

func (l *SetupYAML) Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	var f setupFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, decodeError(path, err)
	}
	return f.manifest(path, l.Type()), nil
}
