package descriptor

import (
	"slices"
	"strings"
)

// Descriptor is the complete static metadata of a distribution.
//
// A Descriptor is built once by [Build] and not modified afterwards;
// it is safe for concurrent reads.
type Descriptor struct {
	Name              string        `json:"name" yaml:"name" bson:"name"`
	Version           string        `json:"version" yaml:"version" bson:"version"`
	Description       string        `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	LongDescription   string        `json:"long_description,omitempty" yaml:"long_description,omitempty" bson:"long_description,omitempty"`
	InstallRequires   []Requirement `json:"install_requires,omitempty" yaml:"install_requires,omitempty" bson:"install_requires,omitempty"`
	Author            string        `json:"author,omitempty" yaml:"author,omitempty" bson:"author,omitempty"`
	AuthorEmail       string        `json:"author_email,omitempty" yaml:"author_email,omitempty" bson:"author_email,omitempty"`
	License           string        `json:"license,omitempty" yaml:"license,omitempty" bson:"license,omitempty"`
	URL               string        `json:"url,omitempty" yaml:"url,omitempty" bson:"url,omitempty"`
	TestSuite         string        `json:"test_suite,omitempty" yaml:"test_suite,omitempty" bson:"test_suite,omitempty"`
	Packages          []string      `json:"packages,omitempty" yaml:"packages,omitempty" bson:"packages,omitempty"`
	NamespacePackages []string      `json:"namespace_packages,omitempty" yaml:"namespace_packages,omitempty" bson:"namespace_packages,omitempty"`
}

// Requirement returns the install requirement with the given name,
// compared after PEP 503 normalization.
func (d *Descriptor) Requirement(name string) (Requirement, bool) {
	key := normalizeName(name)
	for _, r := range d.InstallRequires {
		if normalizeName(r.Name) == key {
			return r, true
		}
	}
	return Requirement{}, false
}

// TopLevelPackages returns the packages that have no dotted parent.
func (d *Descriptor) TopLevelPackages() []string {
	var top []string
	for _, p := range d.Packages {
		if !strings.Contains(p, ".") {
			top = append(top, p)
		}
	}
	return top
}

// IsNamespace reports whether pkg is declared as a namespace package.
func (d *Descriptor) IsNamespace(pkg string) bool {
	return slices.Contains(d.NamespacePackages, pkg)
}

// dedupe removes duplicates keeping first occurrences, so declaration
// order survives.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
