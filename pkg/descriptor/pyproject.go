package descriptor

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Pyproject loads the PEP 621 [project] table of a pyproject.toml, with
// package lists from [tool.setuptools] and distmeta settings from
// [tool.distmeta].
type Pyproject struct{}

func (l *Pyproject) Type() string              { return "pyproject.toml" }
func (l *Pyproject) Supports(name string) bool { return name == "pyproject.toml" }

type pyprojectFile struct {
	Project struct {
		Name         string            `toml:"name"`
		Version      string            `toml:"version"`
		Description  string            `toml:"description"`
		Readme       any               `toml:"readme"`
		License      any               `toml:"license"`
		Authors      []pyPerson        `toml:"authors"`
		Dependencies []string          `toml:"dependencies"`
		URLs         map[string]string `toml:"urls"`
	} `toml:"project"`
	Tool struct {
		Setuptools struct {
			Packages          any      `toml:"packages"`
			NamespacePackages []string `toml:"namespace-packages"`
		} `toml:"setuptools"`
		Distmeta struct {
			ReadmeMarker string `toml:"readme-marker"`
			TestSuite    string `toml:"test-suite"`
		} `toml:"distmeta"`
	} `toml:"tool"`
}

type pyPerson struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

func (l *Pyproject) Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}
	var f pyprojectFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, decodeError(path, err)
	}

	p := f.Project
	m := &Manifest{
		Name:              p.Name,
		Version:           p.Version,
		Description:       p.Description,
		InstallRequires:   p.Dependencies,
		URL:               homepage(p.URLs),
		ReadmeMarker:      f.Tool.Distmeta.ReadmeMarker,
		TestSuite:         f.Tool.Distmeta.TestSuite,
		NamespacePackages: f.Tool.Setuptools.NamespacePackages,
		Path:              path,
		Type:              l.Type(),
	}
	m.Author, m.AuthorEmail = joinPeople(p.Authors)

	switch r := p.Readme.(type) {
	case nil:
	case string:
		m.Readme = r
	case map[string]any:
		m.Readme, _ = r["file"].(string)
		m.LongDescription, _ = r["text"].(string)
	default:
		return nil, decodeError(path, fmt.Errorf("project.readme: unexpected %T", r))
	}

	switch lic := p.License.(type) {
	case nil:
	case string:
		m.License = lic
	case map[string]any:
		m.License, _ = lic["text"].(string)
	default:
		return nil, decodeError(path, fmt.Errorf("project.license: unexpected %T", lic))
	}

	switch pk := f.Tool.Setuptools.Packages.(type) {
	case nil:
	case []any:
		for _, v := range pk {
			if s, ok := v.(string); ok {
				m.Packages = append(m.Packages, s)
			}
		}
	case map[string]any:
		if find, ok := pk["find"].(map[string]any); ok {
			m.Find = findSpecFrom(find)
		}
	default:
		return nil, decodeError(path, fmt.Errorf("tool.setuptools.packages: unexpected %T", pk))
	}

	return m, nil
}

func homepage(urls map[string]string) string {
	for k, v := range urls {
		switch strings.ToLower(strings.ReplaceAll(k, "-", "")) {
		case "homepage", "home":
			return v
		}
	}
	return ""
}

func joinPeople(people []pyPerson) (names, emails string) {
	var ns, es []string
	for _, p := range people {
		if p.Name != "" {
			ns = append(ns, p.Name)
		}
		if p.Email != "" {
			es = append(es, p.Email)
		}
	}
	return strings.Join(ns, ", "), strings.Join(es, ", ")
}

func findSpecFrom(t map[string]any) *FindSpec {
	spec := &FindSpec{
		Include: stringList(t["include"]),
		Exclude: stringList(t["exclude"]),
	}
	switch w := t["where"].(type) {
	case string:
		spec.Where = w
	case []any:
		if len(w) > 0 {
			spec.Where, _ = w[0].(string)
		}
	}
	return spec
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
