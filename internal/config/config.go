// Package config handles the shell's own configuration file: the active
// context and namespace, the alias set, and feature toggles. The file is
// separate from the kubeconfig, which is owned by client-go.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nvm/kshell/internal/alias"
)

const (
	// DefaultFileName is the config file name inside the config directory.
	DefaultFileName = "kshell.yaml"

	maxConfigSize = 1 * 1024 * 1024 // 1MB
)

// Config is the persisted shell state, written back after every context or
// namespace switch and every alias change.
type Config struct {
	Context     string        `yaml:"context,omitempty"`
	Namespace   string        `yaml:"namespace,omitempty"`
	Aliases     []alias.Alias `yaml:"aliases,omitempty"`
	MDNS        bool          `yaml:"mdns,omitempty"`
	HistoryFile string        `yaml:"historyFile,omitempty"`
}

// SaveError wraps a failure to persist the config file. Callers decide
// whether to warn and continue or abort; saving is never fatal on its own.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save config to %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if fileInfo.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses YAML configuration data into a Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path atomically: the YAML is written to a
// temporary file in the same directory and renamed into place, so a watcher
// or a concurrent reader never sees a partial file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &SaveError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".kshell-*.yaml")
	if err != nil {
		return &SaveError{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &SaveError{Path: path, Err: err}
	}

	return nil
}
