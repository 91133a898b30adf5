// Package store persists published distribution descriptors.
//
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per release under a directory, for the CLI
//     and single-node servers
//   - [MongoStore]: a "descriptors" collection, for shared deployments
//
// Releases are keyed by the PEP 503 normalized distribution name and the
// version string. Publishing an existing release replaces its descriptor
// but keeps its record ID.
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/distmeta/pkg/descriptor"
	derrors "github.com/matzehuels/distmeta/pkg/errors"
	"github.com/matzehuels/distmeta/pkg/integrations"
	"github.com/matzehuels/distmeta/pkg/pep440"
)

// ErrNotFound is returned when no release matches a lookup.
var ErrNotFound = errors.New("descriptor not found")

// Record is one published release.
type Record struct {
	ID          string                 `json:"id" bson:"_id"`
	Name        string                 `json:"name" bson:"name"` // normalized
	Version     string                 `json:"version" bson:"version"`
	Descriptor  *descriptor.Descriptor `json:"descriptor" bson:"descriptor"`
	PublishedAt time.Time              `json:"published_at" bson:"published_at"`
}

// Store persists descriptors. Implementations must be safe for concurrent use.
type Store interface {
	// Put publishes d, replacing any release with the same name and version.
	Put(ctx context.Context, d *descriptor.Descriptor) (*Record, error)
	// Get returns one release.
	Get(ctx context.Context, name, version string) (*Record, error)
	// Latest returns the newest final release, or the newest pre-release
	// when there is no final one.
	Latest(ctx context.Context, name string) (*Record, error)
	// Versions lists every published version of name in ascending order.
	Versions(ctx context.Context, name string) ([]string, error)
	// Close releases backend resources.
	Close() error
}

// Key normalizes a distribution name for storage lookups.
func Key(name string) string { return integrations.NormalizePkgName(name) }

func newRecord(d *descriptor.Descriptor) (*Record, error) {
	if d == nil || d.Name == "" || d.Version == "" {
		return nil, derrors.New(derrors.ErrCodeInvalidManifest, "descriptor needs a name and version to be published")
	}
	return &Record{
		ID:          uuid.NewString(),
		Name:        Key(d.Name),
		Version:     d.Version,
		Descriptor:  d,
		PublishedAt: time.Now().UTC(),
	}, nil
}

func notFound(name, version string) error {
	if version == "" {
		return derrors.Wrap(derrors.ErrCodeDescriptorNotFound, ErrNotFound, "%s", name)
	}
	return derrors.Wrap(derrors.ErrCodeDescriptorNotFound, ErrNotFound, "%s %s", name, version)
}

// SortVersions orders versions by PEP 440 precedence. Strings that are not
// PEP 440 versions sort after all others, lexically.
func SortVersions(versions []string) {
	slices.SortStableFunc(versions, func(a, b string) int {
		va, errA := pep440.Parse(a)
		vb, errB := pep440.Parse(b)
		switch {
		case errA == nil && errB == nil:
			return va.Compare(vb)
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		default:
			return cmp.Compare(a, b)
		}
	})
}

// LatestVersion picks the newest final release from versions, falling back
// to the newest version of any kind. It reports false for an empty list.
func LatestVersion(versions []string) (string, bool) {
	if len(versions) == 0 {
		return "", false
	}
	sorted := slices.Clone(versions)
	SortVersions(sorted)
	for i := len(sorted) - 1; i >= 0; i-- {
		if v, err := pep440.Parse(sorted[i]); err == nil && !v.IsPrerelease() {
			return sorted[i], true
		}
	}
	return sorted[len(sorted)-1], true
}

func latest(ctx context.Context, s Store, name string) (*Record, error) {
	versions, err := s.Versions(ctx, name)
	if err != nil {
		return nil, err
	}
	v, ok := LatestVersion(versions)
	if !ok {
		return nil, notFound(name, "")
	}
	return s.Get(ctx, name, v)
}
