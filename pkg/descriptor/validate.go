package descriptor

import (
	"errors"
	"strings"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// Validate checks the descriptor's internal consistency. All problems are
// reported together as a joined error; each one carries
// [derrors.ErrCodeInvalidManifest].
func (d *Descriptor) Validate() error {
	var errs []error
	add := func(cause error, format string, args ...any) {
		if cause != nil {
			errs = append(errs, derrors.Wrap(derrors.ErrCodeInvalidManifest, cause, format, args...))
			return
		}
		errs = append(errs, derrors.New(derrors.ErrCodeInvalidManifest, format, args...))
	}

	if d.Name == "" {
		add(nil, "name is required")
	} else if err := derrors.ValidatePythonPackageName(d.Name); err != nil {
		add(err, "invalid name")
	}
	if d.Version == "" {
		add(nil, "version is required")
	}
	if strings.ContainsAny(d.Description, "\r\n") {
		add(nil, "description must be a single line")
	}

	if d.AuthorEmail != "" {
		for _, addr := range strings.Split(d.AuthorEmail, ",") {
			if err := derrors.ValidateEmail(strings.TrimSpace(addr)); err != nil {
				add(err, "invalid author_email")
			}
		}
	}
	if d.URL != "" {
		if err := derrors.ValidateURL(d.URL); err != nil {
			add(err, "invalid url")
		}
	}

	seen := make(map[string]bool, len(d.InstallRequires))
	for _, r := range d.InstallRequires {
		if seen[r.Key()] {
			add(nil, "duplicate requirement %q", r.Name)
		}
		seen[r.Key()] = true
	}

	declared := make(map[string]bool, len(d.Packages))
	for _, p := range d.Packages {
		declared[p] = true
	}
	for _, p := range d.Packages {
		if err := derrors.ValidateImportPath(p); err != nil {
			add(err, "invalid package")
			continue
		}
		if i := strings.LastIndexByte(p, '.'); i > 0 && !declared[p[:i]] {
			add(nil, "package %q is listed without its parent %q", p, p[:i])
		}
	}
	for _, ns := range d.NamespacePackages {
		if !declared[ns] {
			add(nil, "namespace package %q is not listed in packages", ns)
		}
	}

	return errors.Join(errs...)
}
