package fip

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfig is the decoded form of a project's fip.toml, grounded on
// pkg/dang/project.go's dang.toml handling. It is intentionally small: the
// language has no package manager or GraphQL-style import configuration to
// carry, just the handful of knobs the CLI needs before it can find and
// run an entry-point file.
type ProjectConfig struct {
	// Entry is the default script to run when the CLI is invoked with no
	// path argument, relative to the directory containing fip.toml.
	Entry string `toml:"entry,omitempty"`
	// Debug turns on verbose slog output for every invocation in this
	// project, equivalent to passing --debug on the command line.
	Debug bool `toml:"debug,omitempty"`
}

// LoadProjectConfig decodes a fip.toml file at path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &config, nil
}

// FindProjectConfig searches for fip.toml starting at dir and walking up
// through parent directories, stopping at a .git boundary. Returns
// ("", nil, nil) if no fip.toml is found, matching
// pkg/dang/project.go's FindProjectConfig.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, "fip.toml")
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}
