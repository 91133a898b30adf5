package config

import (
	"github.com/BurntSushi/toml"

	derrors "github.com/matzehuels/distmeta/pkg/errors"
)

// parseFile decodes the TOML file at path over cfg. Keys the file does not
// mention keep their current values; unknown keys are an error.
func parseFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return derrors.New(derrors.ErrCodeInvalidInput, "config file %s: unknown keys %v", path, undecoded)
	}
	return nil
}
