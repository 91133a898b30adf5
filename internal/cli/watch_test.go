package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestWatchSetRelevant(t *testing.T) {
	dir := writeProject(t, setupTOML)
	for _, d := range []string{"peak/rules", ".git"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	s, err := newWatchSet(filepath.Join(dir, "setup.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.dirs[filepath.Join(dir, "peak", "rules")] || s.dirs[filepath.Join(dir, ".git")] {
		t.Errorf("dirs = %v", s.dirs)
	}

	newDir := filepath.Join(dir, "peak", "util")
	os.Mkdir(newDir, 0o755)

	tests := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{"manifest write", fsnotify.Event{Name: filepath.Join(dir, "setup.toml"), Op: fsnotify.Write}, true},
		{"manifest chmod", fsnotify.Event{Name: filepath.Join(dir, "setup.toml"), Op: fsnotify.Chmod}, false},
		{"readme write", fsnotify.Event{Name: filepath.Join(dir, "README.txt"), Op: fsnotify.Write}, true},
		{"new package", fsnotify.Event{Name: filepath.Join(dir, "peak", "__init__.py"), Op: fsnotify.Create}, true},
		{"package edit", fsnotify.Event{Name: filepath.Join(dir, "peak", "__init__.py"), Op: fsnotify.Write}, false},
		{"new directory", fsnotify.Event{Name: newDir, Op: fsnotify.Create}, true},
		{"build output", fsnotify.Event{Name: filepath.Join(dir, "PKG-INFO"), Op: fsnotify.Create}, false},
		{"removed directory", fsnotify.Event{Name: filepath.Join(dir, "peak", "rules"), Op: fsnotify.Remove}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.relevant(tt.ev); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.ev, got, tt.want)
			}
		})
	}
}

func TestWatchRebuildsOnChange(t *testing.T) {
	captureStatus(t)
	dir := writeProject(t, setupTOML)
	c := New(io.Discard, LogInfo)

	builds := make(chan struct{}, 16)
	build := func(context.Context) error {
		builds <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.watch(ctx, dir, build) }()

	<-builds // initial build
	readme := filepath.Join(dir, "README.txt")
	touch := func() {
		if err := os.WriteFile(readme, []byte(readmeTXT+"\nMore.\n"), 0o644); err != nil {
			t.Error(err)
		}
	}
	touch()

	// Each write restarts the debounce timer, so writes are spaced well
	// apart; a later one covers the watcher not being registered yet.
	deadline := time.After(10 * time.Second)
	retry := time.NewTicker(4 * watchDebounce)
	defer retry.Stop()
wait:
	for {
		select {
		case <-builds:
			break wait
		case <-retry.C:
			touch()
		case <-deadline:
			t.Fatal("no rebuild after the README changed")
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("watch() = %v, want context.Canceled", err)
	}
}
