package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays DISTMETA_* variables onto cfg. Unset variables leave
// the current value in place.
func parseEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, envOptions(environ)); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}
	return nil
}

// configPath reads DISTMETA_CONFIG ahead of the full parse, since the file
// it names is applied first.
func configPath(environ map[string]string) (string, error) {
	var ref struct {
		Path string `env:"CONFIG"`
	}
	if err := env.ParseWithOptions(&ref, envOptions(environ)); err != nil {
		return "", fmt.Errorf("error getting env configs: %w", err)
	}
	return ref.Path, nil
}

func envOptions(environ map[string]string) env.Options {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	return opts
}
