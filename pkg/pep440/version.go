// Package pep440 parses and orders Python package versions.
//
// Release segments are parsed and compared with hashicorp/go-version; the
// PEP 440 suffixes (pre-release, post-release, development release) are
// ordered on top of that so that
//
//	1.0.dev1 < 1.0a1 < 1.0b2 < 1.0rc1 < 1.0 < 1.0.post1
//
// Legacy setuptools tags such as "0.0.2.dev-r2188" are accepted and read as
// development releases ("0.0.2.dev2188").
package pep440

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	version "github.com/hashicorp/go-version"
)

// ErrInvalid is returned for strings that are not Python versions.
var ErrInvalid = errors.New("invalid version")

var versionRE = regexp.MustCompile(`^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d*))?` +
	`(?:-(\d+)|[-_.]?(post|rev|r)[-_.]?(\d*))?` +
	`(?:[-_.]?(dev)[-_.]?r?(\d*))?` +
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

// Pre-release phases in ascending order.
const (
	phaseNone  = 0
	phaseAlpha = 1
	phaseBeta  = 2
	phaseRC    = 3
)

// Version is a parsed Python version. The zero value is not usable; use [Parse].
type Version struct {
	epoch    int
	release  *version.Version
	segments []int
	phase    int
	pre      int
	post     int // -1 when absent
	dev      int // -1 when absent
	local    string
	original string
}

// Parse parses s as a PEP 440 version, tolerating the legacy setuptools
// spellings found in older distributions.
func Parse(s string) (*Version, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	m := versionRE.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	rel, err := version.NewVersion(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}

	v := &Version{release: rel, post: -1, dev: -1, local: m[10], original: s}
	for _, p := range strings.Split(m[2], ".") {
		v.segments = append(v.segments, atoi(p))
	}
	if m[1] != "" {
		v.epoch = atoi(m[1])
	}
	if m[3] != "" {
		v.phase = phaseOf(m[3])
		v.pre = atoi(m[4])
	}
	switch {
	case m[5] != "":
		v.post = atoi(m[5])
	case m[6] != "":
		v.post = atoi(m[7])
	}
	if m[8] != "" {
		v.dev = atoi(m[9])
	}
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func phaseOf(tag string) int {
	switch tag {
	case "a", "alpha":
		return phaseAlpha
	case "b", "beta":
		return phaseBeta
	default:
		return phaseRC
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Release returns the release segments, e.g. [0 0 2] for "0.0.2.dev-r2188".
func (v *Version) Release() []int { return append([]int(nil), v.segments...) }

// IsPrerelease reports whether v is a pre-release or development release.
func (v *Version) IsPrerelease() bool { return v.phase != phaseNone || v.dev >= 0 }

// IsPostRelease reports whether v carries a post-release number.
func (v *Version) IsPostRelease() bool { return v.post >= 0 }

// Original returns the string v was parsed from.
func (v *Version) Original() string { return v.original }

// Public returns the canonical form without the local label.
func (v *Version) Public() string {
	var b strings.Builder
	if v.epoch != 0 {
		fmt.Fprintf(&b, "%d!", v.epoch)
	}
	for i, s := range v.segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(s))
	}
	switch v.phase {
	case phaseAlpha:
		fmt.Fprintf(&b, "a%d", v.pre)
	case phaseBeta:
		fmt.Fprintf(&b, "b%d", v.pre)
	case phaseRC:
		fmt.Fprintf(&b, "rc%d", v.pre)
	}
	if v.post >= 0 {
		fmt.Fprintf(&b, ".post%d", v.post)
	}
	if v.dev >= 0 {
		fmt.Fprintf(&b, ".dev%d", v.dev)
	}
	return b.String()
}

// String returns the canonical PEP 440 form, e.g. "0.0.2.dev2188".
func (v *Version) String() string {
	if v.local != "" {
		return v.Public() + "+" + v.local
	}
	return v.Public()
}

// Compare returns -1, 0 or 1 as v sorts before, equal to or after o.
// Local labels are ignored, so "1.0+ubuntu1" compares equal to "1.0".
func (v *Version) Compare(o *Version) int {
	if c := cmpInt(v.epoch, o.epoch); c != 0 {
		return c
	}
	if c := v.release.Compare(o.release); c != 0 {
		return c
	}
	if c := cmpInt(v.preKey(), o.preKey()); c != 0 {
		return c
	}
	if v.phase != phaseNone && v.phase == o.phase {
		if c := cmpInt(v.pre, o.pre); c != 0 {
			return c
		}
	}
	if c := cmpInt(v.post, o.post); c != 0 {
		return c
	}
	return cmpInt(devKey(v.dev), devKey(o.dev))
}

// preKey ranks the pre-release phase. A bare dev release of a final version
// sorts before every pre-release of it.
func (v *Version) preKey() int {
	switch {
	case v.phase != phaseNone:
		return v.phase
	case v.post < 0 && v.dev >= 0:
		return -1
	default:
		return 4
	}
}

func devKey(dev int) int {
	if dev < 0 {
		return int(^uint(0) >> 1)
	}
	return dev
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Equal reports whether v and o denote the same version.
func (v *Version) Equal(o *Version) bool { return v.Compare(o) == 0 }

// LessThan reports whether v sorts before o.
func (v *Version) LessThan(o *Version) bool { return v.Compare(o) < 0 }

// HasReleasePrefix reports whether v's release segments start with prefix,
// padding missing segments with zeros. It implements "==1.2.*" matching.
func (v *Version) HasReleasePrefix(prefix []int) bool {
	for i, p := range prefix {
		s := 0
		if i < len(v.segments) {
			s = v.segments[i]
		}
		if s != p {
			return false
		}
	}
	return true
}

// Sort parses and orders versions ascending. Strings that don't parse are
// dropped. Versions that differ only in their local label are ordered by
// the label so the result does not depend on input order.
func Sort(versions []string) []string {
	parsed := make([]*Version, 0, len(versions))
	for _, s := range versions {
		if v, err := Parse(s); err == nil {
			parsed = append(parsed, v)
		}
	}
	sort.SliceStable(parsed, func(i, j int) bool {
		if c := parsed[i].Compare(parsed[j]); c != 0 {
			return c < 0
		}
		return parsed[i].local < parsed[j].local
	})

	out := make([]string, len(parsed))
	for i, v := range parsed {
		out[i] = v.original
	}
	return out
}
