package config

import (
	"errors"
	"slices"

	"github.com/charmbracelet/log"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, derrors.New(derrors.ErrCodeInvalidInput, format, args...))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		invalid("log_level: %q is not a log level", c.LogLevel)
	}
	if !slices.Contains([]string{BackendFile, BackendRedis, BackendNone}, c.Cache.Backend) {
		invalid("cache.backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendFile && c.Cache.Dir == "" {
		invalid("cache.dir is required for the file backend")
	}
	if c.Cache.Backend == BackendRedis && c.Redis.Addr == "" {
		invalid("redis.addr is required for the redis backend")
	}
	if c.Cache.TTL < 0 {
		invalid("cache.ttl must not be negative")
	}
	if err := derrors.ValidateURL(c.Index.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Index.Workers < 1 {
		invalid("index.workers must be at least 1")
	}
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Dir == "" {
			invalid("store.dir is required for the file backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" {
			invalid("store.mongo_uri and store.mongo_database are required for the mongo backend")
		}
	default:
		invalid("store.backend: %q (must be one of: file, mongo)", c.Store.Backend)
	}
	if c.Server.Addr == "" {
		invalid("server.addr is required")
	}
	return errors.Join(errs...)
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
