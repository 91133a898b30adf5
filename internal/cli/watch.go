package cli

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 250 * time.Millisecond

// watch runs build once, then again whenever a build input changes, until
// ctx is canceled. Build failures are reported and watching continues.
func (c *CLI) watch(ctx context.Context, manifest string, build func(context.Context) error) error {
	logger := loggerFromContext(ctx)

	rebuild := func() {
		if err := build(ctx); err != nil && ctx.Err() == nil {
			printError("%s", derrors.UserMessage(err))
		}
	}
	rebuild()

	path, err := descriptor.ResolveManifest(manifest)
	if err != nil {
		return err
	}
	inputs, err := newWatchSet(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	for dir := range inputs.dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}
	printInfo("Watching %s for changes (Ctrl+C to stop)", inputs.root)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !inputs.relevant(ev) {
				continue
			}
			if ev.Has(fsnotify.Create) && isDir(ev.Name) && inputs.addDir(ev.Name) {
				if err := w.Add(ev.Name); err != nil {
					logger.Warn("cannot watch directory", "dir", ev.Name, "error", err)
				}
			}
			logger.Debug("change", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			printInfo("Rebuilding")
			rebuild()
			inputs.reload()
		}
	}
}

// watchSet knows which paths under a project feed a build: the manifest,
// its README and the package tree.
type watchSet struct {
	manifest string
	readme   string
	root     string
	dirs     map[string]bool
}

func newWatchSet(manifest string) (*watchSet, error) {
	abs, err := filepath.Abs(manifest)
	if err != nil {
		return nil, err
	}
	s := &watchSet{
		manifest: abs,
		root:     filepath.Dir(abs),
		dirs:     make(map[string]bool),
	}
	s.reload()

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		s.dirs[path] = true
		return nil
	})
	return s, err
}

// reload re-reads the manifest, which may name a different README.
func (s *watchSet) reload() {
	m, err := descriptor.Load(s.manifest)
	if err != nil {
		return
	}
	s.readme = ""
	if p := m.ReadmePath(); p != "" {
		if abs, err := filepath.Abs(p); err == nil {
			s.readme = abs
		}
	}
}

func (s *watchSet) addDir(dir string) bool {
	if skipDir(filepath.Base(dir)) || s.dirs[dir] {
		return false
	}
	s.dirs[dir] = true
	return true
}

func (s *watchSet) relevant(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	switch {
	case name == s.manifest, name == s.readme:
		return ev.Op != fsnotify.Chmod
	case filepath.Base(name) == "__init__.py":
		return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
	case s.dirs[name]:
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			delete(s.dirs, name)
			return true
		}
	case ev.Has(fsnotify.Create):
		return isDir(name) && !skipDir(filepath.Base(name))
	}
	return false
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "__pycache__" || name == "node_modules"
}
