// Package file loads the engine configuration and per-piece options from
// YAML and orchestrates a whole-file conversion.
package file

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/notemark/notemark/internal/coordinator"
)

// ReadConfig loads the engine configuration, layered over the defaults:
// only keys present in the file override.
func ReadConfig(fsys fs.FS, configFile string) (*coordinator.Config, error) {
	f, err := fsys.Open(configFile)
	if err != nil {
		// Callers fall back to defaults on fs.ErrNotExist.
		return nil, fmt.Errorf("could not open %v: %w", configFile, err)
	}
	defer f.Close()
	config := coordinator.DefaultConfig()
	err = yaml.NewDecoder(f).Decode(&config)
	if err != nil {
		return nil, fmt.Errorf("could not decode %v: %v", configFile, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}
