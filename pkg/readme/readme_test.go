package readme

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

const peakReadme = `PEAK-Rules
==========

PEAK-Rules is a highly-extensible framework for creating and using generic
functions, from the very simple to the very complex.

.. contents:: **Table of Contents**

Usage
-----
`

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  string
	}{
		{
			name:  "header body marker",
			input: "Title\n\nbody one\nbody two\n.. contents::\ntrailing\n",
			want:  "body one\nbody two\n",
		},
		{
			name:  "realistic readme",
			input: peakReadme,
			want:  "PEAK-Rules is a highly-extensible framework for creating and using generic\nfunctions, from the very simple to the very complex.\n\n",
		},
		{
			name:  "no blank line",
			input: "Title\nstill header\n.. contents::\n",
			want:  "",
		},
		{
			name:  "no marker",
			input: "Title\n\nline a\n\nline b\nline c",
			want:  "line a\n\nline b\nline c",
		},
		{
			name:  "single blank line",
			input: "\n",
			want:  "",
		},
		{
			name:  "empty document",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace-only line counts as blank",
			input: "Title\n   \t\nbody\n.. contents::\n",
			want:  "body\n",
		},
		{
			name:  "marker must start the line",
			input: "Title\n\nsee .. contents:: below\n.. contents::\n",
			want:  "see .. contents:: below\n",
		},
		{
			name:  "marker in header is ignored",
			input: ".. contents::\n\nbody\n",
			want:  "body\n",
		},
		{
			name:  "custom marker",
			input: "Title\n\nbody\n.. contents::\nmore\n---end\nafter\n",
			opts:  Options{Marker: "---end"},
			want:  "body\n.. contents::\nmore\n",
		},
		{
			name:  "crlf line endings preserved",
			input: "Title\r\n\r\nbody\r\n.. contents::\r\n",
			want:  "body\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(strings.NewReader(tt.input), tt.opts)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	first, err := Extract(strings.NewReader(peakReadme), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Extract(strings.NewReader(peakReadme), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Extract() not idempotent: %q != %q", first, second)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestExtract_ReadError(t *testing.T) {
	if _, err := Extract(failingReader{}, Options{}); err == nil {
		t.Fatal("Extract() expected read error")
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "README.txt")
	if err := os.WriteFile(path, []byte(peakReadme), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractFile(path, Options{})
	if err != nil {
		t.Fatalf("ExtractFile() error: %v", err)
	}
	if !strings.HasPrefix(got, "PEAK-Rules is a highly-extensible") {
		t.Errorf("ExtractFile() = %q", got)
	}
	if strings.Contains(got, "contents::") {
		t.Error("ExtractFile() must not include the marker line")
	}
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.txt"), Options{})
	if err == nil {
		t.Fatal("ExtractFile() expected error for missing file")
	}
	if !derrors.Is(err, derrors.ErrCodeFileNotFound) {
		t.Errorf("error code = %q, want %q", derrors.GetCode(err), derrors.ErrCodeFileNotFound)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("ExtractFile() error should wrap os.ErrNotExist")
	}
}

func TestOptions_WithDefaults(t *testing.T) {
	if got := (Options{}).WithDefaults().Marker; got != DefaultMarker {
		t.Errorf("Marker = %q, want %q", got, DefaultMarker)
	}
	if got := (Options{Marker: "x"}).WithDefaults().Marker; got != "x" {
		t.Errorf("Marker = %q, want %q", got, "x")
	}
}
