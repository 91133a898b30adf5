package descriptor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// PKGInfoVersion is the core metadata version written by [WritePKGInfo].
const PKGInfoVersion = "1.1"

const (
	unknown      = "UNKNOWN"
	continuation = "        "
)

// WriteJSON writes d as indented JSON. Requirement operators and markup in
// the long description are written unescaped.
func WriteJSON(w io.Writer, d *Descriptor) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ReadJSON decodes a descriptor written by WriteJSON.
func ReadJSON(r io.Reader) (*Descriptor, error) {
	var d Descriptor
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "decode descriptor")
	}
	return &d, nil
}

// WriteYAML writes d as a YAML document.
func WriteYAML(w io.Writer, d *Descriptor) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

// WritePKGInfo writes d in the PKG-INFO header format. Missing optional
// fields are written as UNKNOWN; the long description is folded onto
// continuation lines indented by eight spaces.
func WritePKGInfo(w io.Writer, d *Descriptor) error {
	bw := bufio.NewWriter(w)
	field := func(key, value string) {
		fmt.Fprintf(bw, "%s: %s\n", key, value)
	}
	orUnknown := func(s string) string {
		if s = strings.Join(strings.Fields(s), " "); s == "" {
			return unknown
		}
		return s
	}

	field("Metadata-Version", PKGInfoVersion)
	field("Name", d.Name)
	field("Version", d.Version)
	field("Summary", orUnknown(d.Description))
	field("Home-page", orUnknown(d.URL))
	field("Author", orUnknown(d.Author))
	field("Author-email", orUnknown(d.AuthorEmail))
	field("License", orUnknown(d.License))
	field("Description", foldDescription(d.LongDescription))
	field("Platform", unknown)
	for _, r := range d.InstallRequires {
		field("Requires", r.String())
	}
	return bw.Flush()
}

// foldDescription indents every line after the first. Line endings are
// normalized to "\n" since readers of the format split on either.
func foldDescription(s string) string {
	if s == "" {
		return unknown
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\n"+continuation)
}

// ParsePKGInfo reads a document written by [WritePKGInfo]. Fields that
// were written as UNKNOWN come back empty. Packages are not part of the
// format and are never set.
func ParsePKGInfo(r io.Reader) (*Descriptor, error) {
	d := &Descriptor{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		key  string
		desc []string
		line int
	)
	for sc.Scan() {
		line++
		text := sc.Text()
		if key == "Description" && (strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\t")) {
			if rest, ok := strings.CutPrefix(text, continuation); ok {
				desc = append(desc, rest)
			} else {
				desc = append(desc, strings.TrimLeft(text, " \t"))
			}
			continue
		}
		if text == "" {
			// A blank line ends the header block.
			break
		}

		k, v, ok := strings.Cut(text, ":")
		if !ok {
			return nil, derrors.New(derrors.ErrCodeInvalidFormat, "PKG-INFO line %d: missing ':'", line)
		}
		key, v = k, strings.TrimPrefix(v, " ")
		if v == unknown {
			v = ""
		}

		switch key {
		case "Name":
			d.Name = v
		case "Version":
			d.Version = v
		case "Summary":
			d.Description = v
		case "Home-page":
			d.URL = v
		case "Author":
			d.Author = v
		case "Author-email":
			d.AuthorEmail = v
		case "License":
			d.License = v
		case "Description":
			desc = []string{v}
		case "Requires", "Requires-Dist":
			req, err := ParseRequirement(v)
			if err != nil {
				return nil, err
			}
			d.InstallRequires = append(d.InstallRequires, req)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidFormat, err, "read PKG-INFO")
	}
	if len(desc) > 0 {
		d.LongDescription = strings.Join(desc, "\n")
	}
	return d, nil
}
