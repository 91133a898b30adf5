package config

import (
	"context"

	"github.com/matzehuels/distmeta/pkg/cache"
	"github.com/matzehuels/distmeta/pkg/integrations/pypi"
	"github.com/matzehuels/distmeta/pkg/store"
)

// OpenCache opens the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
	default:
		return cache.NewFileCache(c.Cache.Dir)
	}
}

// Keyer returns the cache keyer, scoped when a prefix is configured.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix != "" {
		return cache.NewScopedKeyer(nil, c.Cache.Prefix)
	}
	return cache.NewDefaultKeyer()
}

// OpenStore opens the configured descriptor store.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	if c.Store.Backend == BackendMongo {
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      c.Store.MongoURI,
			Database: c.Store.MongoDatabase,
		})
	}
	return store.NewFileStore(c.Store.Dir)
}

// IndexClient returns a package index client sharing cache c.
func (c *Config) IndexClient(backend cache.Cache) *pypi.Client {
	client := pypi.NewClient(backend, c.Cache.TTL, c.Index.URL)
	client.SetKeyer(c.Keyer())
	return client
}
