package cache

// Keyer produces cache keys for the different kinds of cached data.
type Keyer interface {
	// HTTPKey keys a decoded index response, e.g. ("pypi:", "decoratortools").
	HTTPKey(namespace, key string) string
	// ArtifactKey keys a rendered build artifact by the hash of its inputs.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the build options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format       string `json:"format"`
	SkipValidate bool   `json:"skip_validate,omitempty"`
	Detailed     bool   `json:"detailed,omitempty"`
}

// DefaultKeyer is the unscoped Keyer used by the CLI.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ArtifactKey hashes the input hash together with opts.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, isolating deployments that share
// one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "distmeta:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for index response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
