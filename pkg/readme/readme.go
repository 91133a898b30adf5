package readme

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// DefaultMarker is the line prefix that ends the extracted body.
const DefaultMarker = ".. contents::"

// Options configures extraction.
type Options struct {
	Marker string // Line prefix ending the body (default: DefaultMarker)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	return opts
}

// Extract reads r to the first blank line, then collects lines until a line
// starting with the marker. The marker line is not included.
func Extract(r io.Reader, opts Options) (string, error) {
	opts = opts.WithDefaults()
	br := bufio.NewReader(r)

	inBody := false
	var b strings.Builder
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if !inBody {
				inBody = strings.TrimSpace(line) == ""
			} else if strings.HasPrefix(line, opts.Marker) {
				return b.String(), nil
			} else {
				b.WriteString(line)
			}
		}
		if errors.Is(err, io.EOF) {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// ExtractFile opens path, extracts the description and closes the file.
func ExtractFile(path string, opts Options) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", derrors.Wrap(derrors.ErrCodeFileNotFound, err, "readme %s", path)
		}
		return "", derrors.Wrap(derrors.ErrCodeInvalidPath, err, "open readme %s", path)
	}
	defer f.Close()

	desc, err := Extract(f, opts)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInternal, err, "read readme %s", path)
	}
	return desc, nil
}
