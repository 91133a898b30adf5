package descriptor

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestFindPackages(t *testing.T) {
	root := filepath.Join("testdata", "peak-rules")

	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{"all", nil, nil, []string{"peak", "peak.rules", "peak.rules.tests"}},
		{"exclude tests", nil, []string{"**/tests"}, []string{"peak", "peak.rules"}},
		{"include children", []string{"peak/rules/*"}, nil, []string{"peak.rules.tests"}},
		{"include exact", []string{"peak"}, nil, []string{"peak"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindPackages(root, tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("FindPackages() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindPackages() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindPackagesSkipsOrphans(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"pkg/__init__.py":            "",
		"notpkg/child/__init__.py":   "",
		"pkg/sub/deeper/__init__.py": "",
	})
	got, err := FindPackages(dir, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"pkg"}) {
		t.Errorf("FindPackages() = %v, want [pkg]", got)
	}
}

func TestFindPackagesBadPattern(t *testing.T) {
	if _, err := FindPackages(t.TempDir(), []string{"[unclosed"}, nil); err == nil {
		t.Error("FindPackages() should reject malformed patterns")
	}
}
