package descriptor

import (
	"testing"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

func TestLoaders_Supports(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"setup.toml", "setup.toml"},
		{"pyproject.toml", "pyproject.toml"},
		{"setup.yaml", "setup.yaml"},
		{"setup.yml", "setup.yaml"},
		{"/some/dir/setup.toml", "setup.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			l, err := DetectLoader(tt.filename)
			if err != nil {
				t.Fatalf("DetectLoader() error: %v", err)
			}
			if l.Type() != tt.want {
				t.Errorf("Type() = %q, want %q", l.Type(), tt.want)
			}
		})
	}
}

func TestDetectLoaderUnsupported(t *testing.T) {
	for _, name := range []string{"setup.py", "Setup.toml", "poetry.lock"} {
		if _, err := DetectLoader(name); !derrors.Is(err, derrors.ErrCodeUnsupported) {
			t.Errorf("DetectLoader(%q) error = %v, want UNSUPPORTED", name, err)
		}
	}
}

func TestDetectLoaderCustom(t *testing.T) {
	l, err := DetectLoader("setup.toml", &SetupYAML{})
	if err == nil {
		t.Errorf("DetectLoader() = %v, want error when only yaml loader given", l.Type())
	}
}

func TestSetupTOMLDecodeError(t *testing.T) {
	dir := writeProject(t, map[string]string{"setup.toml": "name = [unterminated"})
	_, err := (&SetupTOML{}).Load(dir + "/setup.toml")
	if !derrors.Is(err, derrors.ErrCodeInvalidManifest) {
		t.Errorf("Load() error = %v, want INVALID_MANIFEST", err)
	}
}

func TestSetupManifestReadmeDefault(t *testing.T) {
	dir := writeProject(t, map[string]string{"setup.toml": "name = \"demo\"\n"})
	m, err := (&SetupTOML{}).Load(dir + "/setup.toml")
	if err != nil {
		t.Fatal(err)
	}
	if m.Readme != DefaultReadme {
		t.Errorf("Readme = %q, want %q", m.Readme, DefaultReadme)
	}
}

func TestPyprojectFind(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"pyproject.toml": `[project]
name = "demo"
version = "1.0"
readme = { text = "inline", content-type = "text/plain" }
license = "MIT"
authors = [{ name = "A" }, { name = "B", email = "b@example.com" }]

[tool.setuptools.packages.find]
where = ["src"]
exclude = ["**/tests"]
`,
	})
	m, err := (&Pyproject{}).Load(dir + "/pyproject.toml")
	if err != nil {
		t.Fatal(err)
	}
	if m.LongDescription != "inline" || m.Readme != "" {
		t.Errorf("readme table: LongDescription = %q, Readme = %q", m.LongDescription, m.Readme)
	}
	if m.License != "MIT" {
		t.Errorf("License = %q", m.License)
	}
	if m.Author != "A, B" || m.AuthorEmail != "b@example.com" {
		t.Errorf("Author = %q, AuthorEmail = %q", m.Author, m.AuthorEmail)
	}
	if m.Find == nil || m.Find.Where != "src" || len(m.Find.Exclude) != 1 {
		t.Errorf("Find = %+v", m.Find)
	}
}
