// Package config loads distmeta settings.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. built-in defaults ([Default])
//  2. a TOML file named by DISTMETA_CONFIG, if set
//  3. DISTMETA_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// Example config file:
//
//	log_level = "debug"
//
//	[cache]
//	backend = "redis"
//	ttl = "12h"
//
//	[redis]
//	addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/distmeta/pkg/cache"
	"github.com/matzehuels/distmeta/pkg/check"
	"github.com/matzehuels/distmeta/pkg/integrations/pypi"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DISTMETA_"

const appName = "distmeta"

// Backend names.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
	BackendMongo = "mongo"
)

// Config is the complete distmeta configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	// Env: DISTMETA_LOG_LEVEL
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	Cache  Cache  `toml:"cache" envPrefix:"CACHE_"`
	Redis  Redis  `toml:"redis" envPrefix:"REDIS_"`
	Index  Index  `toml:"index" envPrefix:"INDEX_"`
	Store  Store  `toml:"store" envPrefix:"STORE_"`
	Server Server `toml:"server" envPrefix:"SERVER_"`

	// File is the config file that was applied, if any.
	// Env: DISTMETA_CONFIG
	File string `toml:"-" env:"CONFIG"`
}

// Cache configures the response and artifact cache.
type Cache struct {
	// Backend is file, redis or none.
	Backend string        `toml:"backend" env:"BACKEND"`
	Dir     string        `toml:"dir" env:"DIR"`
	TTL     time.Duration `toml:"ttl" env:"TTL"`
	// Prefix scopes keys in a shared Redis instance.
	Prefix string `toml:"prefix" env:"PREFIX"`
}

// Redis holds the Redis connection used when Cache.Backend is redis.
type Redis struct {
	Addr     string `toml:"addr" env:"ADDR"`
	Password string `toml:"password" env:"PASSWORD"`
	DB       int    `toml:"db" env:"DB"`
}

// Index configures the package index requirements are checked against.
type Index struct {
	URL     string `toml:"url" env:"URL"`
	Workers int    `toml:"workers" env:"WORKERS"`
}

// Store configures where published descriptors live.
type Store struct {
	// Backend is file or mongo.
	Backend       string `toml:"backend" env:"BACKEND"`
	Dir           string `toml:"dir" env:"DIR"`
	MongoURI      string `toml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `toml:"mongo_database" env:"MONGO_DATABASE"`
}

// Server configures `distmeta serve`.
type Server struct {
	Addr            string        `toml:"addr" env:"ADDR"`
	ReadTimeout     time.Duration `toml:"read_timeout" env:"READ_TIMEOUT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Default returns the built-in configuration. Directories follow the XDG
// base directory conventions.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Cache: Cache{
			Backend: BackendFile,
			Dir:     xdgDir("XDG_CACHE_HOME", ".cache"),
			TTL:     cache.TTLHTTP,
		},
		Redis: Redis{Addr: "localhost:6379"},
		Index: Index{
			URL:     pypi.DefaultIndexURL,
			Workers: check.DefaultWorkers,
		},
		Store: Store{
			Backend:       BackendFile,
			Dir:           filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "descriptors"),
			MongoDatabase: appName,
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional config file and
// the process environment.
func Load() (*Config, error) {
	return load(nil)
}

// load is Load with an explicit environment; nil means the process
// environment.
func load(environ map[string]string) (*Config, error) {
	cfg := Default()

	path, err := configPath(environ)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := parseFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.File = path
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, fallback, appName)
}
