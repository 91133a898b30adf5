package descriptor

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// FindPackages discovers Python packages below root: directories holding an
// __init__.py whose parents are packages as well. Names are returned dotted
// ("peak.rules") and sorted.
//
// Include and exclude are doublestar patterns matched against the package
// path with "/" separators ("peak/**", "*/tests"). A package is kept when it
// matches any include pattern (or include is empty) and no exclude pattern.
func FindPackages(root string, include, exclude []string) ([]string, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, derrors.New(derrors.ErrCodeInvalidInput, "invalid package pattern %q", p)
		}
	}

	matches, err := doublestar.Glob(os.DirFS(root), "**/__init__.py")
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "find packages in %s", root)
	}

	dirs := make(map[string]bool, len(matches))
	for _, m := range matches {
		if dir := path.Dir(m); dir != "." {
			dirs[dir] = true
		}
	}

	var pkgs []string
	for dir := range dirs {
		if !parentsArePackages(dir, dirs) {
			continue
		}
		if !matchAny(include, dir, true) || matchAny(exclude, dir, false) {
			continue
		}
		pkgs = append(pkgs, strings.ReplaceAll(dir, "/", "."))
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

func parentsArePackages(dir string, dirs map[string]bool) bool {
	for p := path.Dir(dir); p != "."; p = path.Dir(p) {
		if !dirs[p] {
			return false
		}
	}
	return true
}

func matchAny(patterns []string, name string, emptyResult bool) bool {
	if len(patterns) == 0 {
		return emptyResult
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
