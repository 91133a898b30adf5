package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/distmeta/internal/server"
	"github.com/matzehuels/distmeta/pkg/cache"
	"github.com/matzehuels/distmeta/pkg/check"
	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/store"
)

const setupTOML = `name = "PEAK-Rules"
version = "0.1"
description = "Generic functions and business rules support systems"
readme = "README.txt"
install_requires = ["BytecodeAssembler>=0.0.2.dev-r2188", "DecoratorTools>=1.0"]
author = "Phillip J. Eby"
author_email = "peak@eby-sarna.com"
license = "PSF or ZPL"
packages = ["peak", "peak.rules"]
namespace_packages = ["peak"]
`

const readmeTXT = `Generic Functions
=================

PEAK-Rules is a highly-extensible framework for creating and using generic
functions.

.. contents:: **Table of Contents**

Everything after the marker is dropped.
`

const wantLongDescription = `PEAK-Rules is a highly-extensible framework for creating and using generic
functions.

`

// testEnv points the cache and store at temporary directories and captures
// status output.
func testEnv(t *testing.T) (storeDir string, status *bytes.Buffer) {
	t.Helper()
	storeDir = t.TempDir()
	t.Setenv("DISTMETA_CACHE_DIR", t.TempDir())
	t.Setenv("DISTMETA_STORE_DIR", storeDir)
	t.Setenv("DISTMETA_LOG_LEVEL", "info")
	return storeDir, captureStatus(t)
}

func writeProject(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{"setup.toml": manifest, "README.txt": readmeTXT} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// execute runs the root command and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	t.Cleanup(func() { c.Close() })

	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAppInitOnce(t *testing.T) {
	testEnv(t)
	app := NewApp(newLogger(io.Discard, log.InfoLevel))

	if err := app.Init(context.Background(), InitOptions{}); err != nil {
		t.Fatal(err)
	}
	cfg, c := app.Config, app.Cache
	if err := app.Init(context.Background(), InitOptions{Verbose: true, NoCache: true}); err != nil {
		t.Fatal(err)
	}
	if app.Config != cfg || app.Cache != c {
		t.Error("second Init() replaced the environment")
	}
	if app.Logger.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, second Init() should be ignored", app.Logger.GetLevel())
	}
	if _, ok := app.Cache.(*cache.FileCache); !ok {
		t.Errorf("Cache = %T, want *cache.FileCache", app.Cache)
	}
}

func TestAppInitOptions(t *testing.T) {
	testEnv(t)
	app := NewApp(newLogger(io.Discard, log.InfoLevel))
	if err := app.Init(context.Background(), InitOptions{Verbose: true, NoCache: true}); err != nil {
		t.Fatal(err)
	}
	if app.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", app.Logger.GetLevel())
	}
	if _, ok := app.Cache.(cache.NullCache); !ok {
		t.Errorf("Cache = %T, want cache.NullCache", app.Cache)
	}
}

func TestAppInitCacheFallback(t *testing.T) {
	testEnv(t)
	t.Setenv("DISTMETA_CACHE_BACKEND", "redis")
	t.Setenv("DISTMETA_REDIS_ADDR", "127.0.0.1:1")

	var logs bytes.Buffer
	app := NewApp(newLogger(&logs, log.InfoLevel))
	if err := app.Init(context.Background(), InitOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := app.Cache.(cache.NullCache); !ok {
		t.Errorf("Cache = %T, want cache.NullCache", app.Cache)
	}
	if !strings.Contains(logs.String(), "cache unavailable") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestAppInitInvalidConfig(t *testing.T) {
	testEnv(t)
	t.Setenv("DISTMETA_CACHE_BACKEND", "floppy")

	app := NewApp(newLogger(io.Discard, log.InfoLevel))
	err := app.Init(context.Background(), InitOptions{})
	if !derrors.Is(err, derrors.ErrCodeInvalidInput) {
		t.Fatalf("Init() error = %v, want INVALID_INPUT", err)
	}
	if again := app.Init(context.Background(), InitOptions{}); again != err {
		t.Errorf("second Init() = %v, want the first error", again)
	}
	if err := app.Close(); err != nil {
		t.Errorf("Close() on failed app: %v", err)
	}
}

func TestBuildStdout(t *testing.T) {
	testEnv(t)
	dir := writeProject(t, setupTOML)

	out, err := execute(t, "build", dir, "-f", "pkginfo")
	if err != nil {
		t.Fatal(err)
	}
	d, err := descriptor.ParsePKGInfo(strings.NewReader(out))
	if err != nil {
		t.Fatalf("stdout is not PKG-INFO: %v\n%s", err, out)
	}
	if d.Name != "PEAK-Rules" || !strings.Contains(d.LongDescription, "highly-extensible framework") {
		t.Errorf("PKG-INFO = %+v", d)
	}
}

func TestBuildOutputDir(t *testing.T) {
	_, status := testEnv(t)
	dir := writeProject(t, setupTOML)
	out := filepath.Join(t.TempDir(), "dist")

	if _, err := execute(t, "build", dir, "-f", "json, pkginfo,dot", "-o", out); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"PEAK-Rules-0.1.json", "PKG-INFO", "PEAK-Rules-0.1.dot"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	data, _ := os.ReadFile(filepath.Join(out, "PEAK-Rules-0.1.json"))
	d, err := descriptor.ReadJSON(bytes.NewReader(data))
	if err != nil || len(d.InstallRequires) != 2 {
		t.Errorf("json artifact = %+v, %v", d, err)
	}
	if !strings.Contains(status.String(), "2 requirements") {
		t.Errorf("status = %q", status.String())
	}
}

func TestBuildSingleFileOutput(t *testing.T) {
	testEnv(t)
	dir := writeProject(t, setupTOML)
	out := filepath.Join(t.TempDir(), "meta.yaml")

	stdout, err := execute(t, "build", filepath.Join(dir, "setup.toml"), "-f", "yaml", "-o", out)
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil || !strings.Contains(string(data), "name: PEAK-Rules") {
		t.Errorf("yaml artifact = %q, %v", data, err)
	}
}

func TestBuildErrors(t *testing.T) {
	testEnv(t)
	dir := writeProject(t, setupTOML)

	tests := []struct {
		name string
		args []string
		code derrors.Code
	}{
		{"bad format", []string{"build", dir, "-f", "pdf"}, derrors.ErrCodeInvalidInput},
		{"no manifest", []string{"build", t.TempDir()}, derrors.ErrCodeFileNotFound},
		{"graph format", []string{"graph", dir, "-f", "json"}, derrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !derrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGraph(t *testing.T) {
	testEnv(t)
	dir := writeProject(t, setupTOML)

	out, err := execute(t, "graph", dir, "--detailed")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph") || !strings.Contains(out, "BytecodeAssembler") {
		t.Errorf("graph output:\n%s", out)
	}
}

func TestDescribe(t *testing.T) {
	testEnv(t)
	dir := writeProject(t, setupTOML)

	out, err := execute(t, "describe", filepath.Join(dir, "README.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if out != wantLongDescription {
		t.Errorf("describe = %q, want %q", out, wantLongDescription)
	}

	out, err = execute(t, "describe", filepath.Join(dir, "README.txt"), "--marker", "Everything")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ".. contents::") || strings.Contains(out, "Everything") {
		t.Errorf("describe --marker = %q", out)
	}

	_, err = execute(t, "describe", filepath.Join(dir, "MISSING.txt"))
	if !derrors.Is(err, derrors.ErrCodeFileNotFound) {
		t.Errorf("missing README error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	_, status := testEnv(t)

	if _, err := execute(t, "validate", writeProject(t, setupTOML)); err != nil {
		t.Errorf("valid manifest: %v", err)
	}

	status.Reset()
	bad := strings.NewReplacer(
		`version = "0.1"`+"\n", "",
		"peak@eby-sarna.com", "not-an-address",
	).Replace(setupTOML)
	_, err := execute(t, "validate", writeProject(t, bad))
	if !derrors.Is(err, derrors.ErrCodeInvalidManifest) {
		t.Fatalf("error = %v, want INVALID_MANIFEST", err)
	}
	for _, want := range []string{"version is required", "invalid author_email", "2 problems"} {
		if !strings.Contains(status.String()+err.Error(), want) {
			t.Errorf("output missing %q:\n%s", want, status.String())
		}
	}
}

func TestPublishLocal(t *testing.T) {
	storeDir, _ := testEnv(t)
	dir := writeProject(t, setupTOML)

	if _, err := execute(t, "publish", dir); err != nil {
		t.Fatal(err)
	}
	st, err := store.NewFileStore(storeDir)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := st.Get(context.Background(), "peak_rules", "0.1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Descriptor.LongDescription != wantLongDescription {
		t.Errorf("stored long description = %q", rec.Descriptor.LongDescription)
	}
}

func TestPublishRemoteAndCheck(t *testing.T) {
	testEnv(t)
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(server.New(st, log.NewWithOptions(io.Discard, log.Options{}), nil).Handler())
	defer ts.Close()

	decoratorTools := strings.NewReplacer(
		`name = "PEAK-Rules"`, `name = "DecoratorTools"`,
		`version = "0.1"`, `version = "1.8"`,
		`install_requires = ["BytecodeAssembler>=0.0.2.dev-r2188", "DecoratorTools>=1.0"]`, `install_requires = []`,
		`packages = ["peak", "peak.rules"]`, `packages = []`,
		`namespace_packages = ["peak"]`, `namespace_packages = []`,
	).Replace(setupTOML)
	if _, err := execute(t, "publish", writeProject(t, decoratorTools), "--server", ts.URL+"/"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(context.Background(), "DecoratorTools", "1.8"); err != nil {
		t.Fatalf("server did not store the release: %v", err)
	}

	out, err := execute(t, "check", writeProject(t, setupTOML), "--index-url", ts.URL+"/pypi", "--json")
	if !derrors.Is(err, derrors.ErrCodeUnsatisfied) {
		t.Errorf("check error = %v, want UNSATISFIED_REQUIREMENT", err)
	}
	var report check.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	want := map[string]check.Status{"BytecodeAssembler": check.StatusMissing, "DecoratorTools": check.StatusOK}
	for _, res := range report.Results {
		if res.Status != want[res.Requirement.Name] {
			t.Errorf("%s: status = %s, want %s", res.Requirement.Name, res.Status, want[res.Requirement.Name])
		}
		if res.Requirement.Name == "DecoratorTools" && (res.License != "PSF or ZPL" || res.Summary == "") {
			t.Errorf("DecoratorTools should carry the published summary and license: %+v", res)
		}
	}
}

func TestPublishRemoteRejected(t *testing.T) {
	testEnv(t)
	ts := httptest.NewServer(server.New(nil, log.NewWithOptions(io.Discard, log.Options{}), nil).Handler())
	defer ts.Close()

	d := &descriptor.Descriptor{Name: "x"}
	_, err := publishRemote(context.Background(), ts.URL, d)
	if !derrors.Is(err, derrors.ErrCodeInvalidManifest) {
		t.Fatalf("error = %v, want INVALID_MANIFEST", err)
	}
	if !strings.Contains(err.Error(), "version is required") {
		t.Errorf("error should carry the server's details: %v", err)
	}
}

func TestShow(t *testing.T) {
	testEnv(t)
	out, err := execute(t, "show", writeProject(t, setupTOML))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"PEAK-Rules 0.1", "Phillip J. Eby", "DecoratorTools>=1.0", "rules", "(namespace)"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheClear(t *testing.T) {
	testEnv(t)
	dir := os.Getenv("DISTMETA_CACHE_DIR")
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	fc.Set(context.Background(), "a", []byte("1"), 0)
	fc.Set(context.Background(), "b", []byte("2"), 0)

	out, err := execute(t, "cache", "path")
	if err != nil || strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, %v", out, err)
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(context.Background(), "a"); ok {
		t.Error("cache clear left entries behind")
	}
}

func TestVersionFlag(t *testing.T) {
	testEnv(t)
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "distmeta") {
		t.Errorf("--version = %q", out)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"svg", []string{"svg"}},
		{"JSON, pkginfo,,json", []string{"json", "pkginfo"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestArtifactName(t *testing.T) {
	d := &descriptor.Descriptor{Name: "PEAK-Rules", Version: "0.1"}
	tests := map[string]string{
		"json":    "PEAK-Rules-0.1.json",
		"yaml":    "PEAK-Rules-0.1.yaml",
		"pkginfo": "PKG-INFO",
		"png":     "PEAK-Rules-0.1.png",
	}
	for format, want := range tests {
		if got := artifactName(d, format); got != want {
			t.Errorf("artifactName(%s) = %q, want %q", format, got, want)
		}
	}
}

func TestProblems(t *testing.T) {
	d := &descriptor.Descriptor{Name: "x", AuthorEmail: "nope"}
	got := problems(d.Validate())
	if len(got) != 2 {
		t.Fatalf("problems() = %q", got)
	}
	if got[0] != "version is required" || !strings.HasPrefix(got[1], "invalid author_email: ") {
		t.Errorf("problems() = %q", got)
	}
	if problems(nil) != nil {
		t.Error("problems(nil) should be nil")
	}
}
