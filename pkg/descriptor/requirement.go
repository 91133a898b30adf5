package descriptor

import (
	"fmt"
	"regexp"
	"strings"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/integrations"
	"github.com/matzehuels/distmeta/pkg/pep440"
)

// Version comparison operators accepted in a specifier.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpGreaterEqual = ">="
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpLess         = "<"
	OpCompatible   = "~="
	OpArbitrary    = "==="
)

var (
	reqNameRE = regexp.MustCompile(`^\s*([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*`)
	extrasRE  = regexp.MustCompile(`^\[([^\]]*)\]\s*`)
	specRE    = regexp.MustCompile(`^\s*(===|~=|==|!=|<=|>=|<|>)\s*([A-Za-z0-9!+*._-]+)\s*$`)
)

// Specifier is one version clause of a requirement, e.g. ">=1.0".
type Specifier struct {
	Op      string `json:"op" yaml:"op" bson:"op"`
	Version string `json:"version" yaml:"version" bson:"version"`
}

func (s Specifier) String() string { return s.Op + s.Version }

// Requirement is a named dependency with an optional version constraint,
// e.g. "BytecodeAssembler>=0.0.2.dev-r2188".
//
// Requirements marshal to and from their string form in JSON and YAML.
type Requirement struct {
	Name       string      `bson:"name"`
	Extras     []string    `bson:"extras,omitempty"`
	Specifiers []Specifier `bson:"specifiers,omitempty"`
	Marker     string      `bson:"marker,omitempty"`
}

// ParseRequirement parses a PEP 508 style requirement string. Version
// clauses may be comma-separated and optionally parenthesized:
//
//	DecoratorTools>=1.0
//	BytecodeAssembler (>=0.0.2.dev-r2188, <1)
//	requests[socks]>=2; python_version >= "3.8"
//
// Errors carry [derrors.ErrCodeInvalidRequirement].
func ParseRequirement(s string) (Requirement, error) {
	src := s
	var r Requirement

	if i := strings.IndexByte(s, ';'); i >= 0 {
		r.Marker = strings.TrimSpace(s[i+1:])
		s = s[:i]
	}

	m := reqNameRE.FindStringSubmatch(s)
	if m == nil {
		return Requirement{}, invalidRequirement(src, "missing project name")
	}
	r.Name = m[1]
	s = s[len(m[0]):]

	if m := extrasRE.FindStringSubmatch(s); m != nil {
		for _, e := range strings.Split(m[1], ",") {
			if e = strings.TrimSpace(e); e != "" {
				r.Extras = append(r.Extras, e)
			}
		}
		s = s[len(m[0]):]
	}

	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return Requirement{}, invalidRequirement(src, "unbalanced parenthesis")
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return r, nil
	}

	for _, clause := range strings.Split(s, ",") {
		sm := specRE.FindStringSubmatch(clause)
		if sm == nil {
			return Requirement{}, invalidRequirement(src, fmt.Sprintf("bad version clause %q", strings.TrimSpace(clause)))
		}
		spec := Specifier{Op: sm[1], Version: sm[2]}
		if err := spec.check(); err != nil {
			return Requirement{}, invalidRequirement(src, err.Error())
		}
		r.Specifiers = append(r.Specifiers, spec)
	}
	return r, nil
}

// MustParseRequirement is like ParseRequirement but panics on error.
func MustParseRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

func invalidRequirement(s, reason string) error {
	return derrors.New(derrors.ErrCodeInvalidRequirement, "invalid requirement %q: %s", s, reason)
}

func (s Specifier) check() error {
	switch {
	case s.Op == OpArbitrary:
		return nil
	case strings.HasSuffix(s.Version, ".*"):
		if s.Op != OpEqual && s.Op != OpNotEqual {
			return fmt.Errorf("wildcard only allowed with == and !=")
		}
		_, err := pep440.Parse(strings.TrimSuffix(s.Version, ".*"))
		return err
	default:
		v, err := pep440.Parse(s.Version)
		if err != nil {
			return err
		}
		if s.Op == OpCompatible && len(v.Release()) < 2 {
			return fmt.Errorf("~= needs at least two release segments")
		}
		return nil
	}
}

// String returns the canonical form: name, extras, comma-joined clauses
// and the environment marker.
func (r Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if len(r.Extras) > 0 {
		b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
	}
	b.WriteString(r.Constraint())
	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

// Constraint returns the comma-joined version clauses, e.g. ">=1.0,<2".
// It is empty for an unconstrained requirement.
func (r Requirement) Constraint() string {
	parts := make([]string, len(r.Specifiers))
	for i, s := range r.Specifiers {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

// Key returns the PEP 503 normalized project name.
func (r Requirement) Key() string { return normalizeName(r.Name) }

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Requirement) UnmarshalText(b []byte) error {
	parsed, err := ParseRequirement(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Satisfies reports whether version meets every clause. Pre-releases only
// satisfy a requirement that itself names a pre-release. Unparseable
// versions never satisfy.
func (r Requirement) Satisfies(version string) bool {
	v, err := pep440.Parse(version)
	if err != nil {
		return r.matchesArbitrary(version)
	}
	return r.matches(v, r.allowsPrereleases())
}

// Best returns the highest of versions that satisfies r. Final releases win;
// pre-releases are considered only when no final release matches.
func (r Requirement) Best(versions []string) (string, bool) {
	allowPre := r.allowsPrereleases()
	var best, bestPre *pep440.Version
	for _, s := range versions {
		v, err := pep440.Parse(s)
		if err != nil {
			continue
		}
		switch {
		case r.matches(v, allowPre):
			if best == nil || best.LessThan(v) {
				best = v
			}
		case !allowPre && v.IsPrerelease() && r.matches(v, true):
			if bestPre == nil || bestPre.LessThan(v) {
				bestPre = v
			}
		}
	}
	if best != nil {
		return best.Original(), true
	}
	if bestPre != nil {
		return bestPre.Original(), true
	}
	return "", false
}

// matchesArbitrary handles versions outside PEP 440, which only "==="
// clauses can match.
func (r Requirement) matchesArbitrary(version string) bool {
	if len(r.Specifiers) == 0 {
		return false
	}
	for _, s := range r.Specifiers {
		if s.Op != OpArbitrary || !strings.EqualFold(strings.TrimSpace(version), s.Version) {
			return false
		}
	}
	return true
}

func (r Requirement) allowsPrereleases() bool {
	for _, s := range r.Specifiers {
		if v, err := pep440.Parse(strings.TrimSuffix(s.Version, ".*")); err == nil && v.IsPrerelease() {
			return true
		}
	}
	return false
}

func (r Requirement) matches(v *pep440.Version, allowPre bool) bool {
	if v.IsPrerelease() && !allowPre {
		return false
	}
	for _, s := range r.Specifiers {
		if !s.Allows(v) {
			return false
		}
	}
	return true
}

// Allows reports whether v satisfies this single clause.
func (s Specifier) Allows(v *pep440.Version) bool {
	if s.Op == OpArbitrary {
		return strings.EqualFold(v.Original(), s.Version)
	}

	if prefix, ok := strings.CutSuffix(s.Version, ".*"); ok {
		pv, err := pep440.Parse(prefix)
		if err != nil {
			return false
		}
		match := v.HasReleasePrefix(pv.Release())
		if s.Op == OpNotEqual {
			return !match
		}
		return match
	}

	sv, err := pep440.Parse(s.Version)
	if err != nil {
		return false
	}
	// Compare ignores local labels, so a clause naming one also matches
	// the label itself.
	same := v.Compare(sv) == 0
	if strings.Contains(s.Version, "+") {
		same = same && v.String() == sv.String()
	}
	c := v.Compare(sv)

	switch s.Op {
	case OpEqual:
		return same
	case OpNotEqual:
		return !same
	case OpGreaterEqual:
		return c >= 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		if c <= 0 {
			return false
		}
		// >1.0 excludes 1.0.post1 unless the clause is itself a post-release.
		return sv.IsPostRelease() || !v.IsPostRelease() || !sameRelease(v, sv)
	case OpLess:
		if c >= 0 {
			return false
		}
		// <2.0 excludes 2.0rc1 unless the clause is itself a pre-release.
		return sv.IsPrerelease() || !v.IsPrerelease() || !sameRelease(v, sv)
	case OpCompatible:
		rel := sv.Release()
		return c >= 0 && v.HasReleasePrefix(rel[:len(rel)-1])
	}
	return false
}

func sameRelease(a, b *pep440.Version) bool {
	ra, rb := a.Release(), b.Release()
	return a.HasReleasePrefix(rb) && b.HasReleasePrefix(ra)
}

func normalizeName(name string) string { return integrations.NormalizePkgName(name) }
