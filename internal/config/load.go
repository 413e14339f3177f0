package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Loading errors.
var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidEnv     = errors.New("invalid environment override")
)

// configPathEnv names an explicit config file.
const configPathEnv = "CONFIG_PATH"

// Load reads the first config file found, applies environment overrides and validates.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath is Load with an explicit file. An explicit file must exist.
func LoadFromPath(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Loader searches a list of paths for the YAML file.
type Loader struct {
	configPaths []string
}

// NewLoader returns a Loader over the standard locations.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{"configs/config.yaml", "config.yaml", "/etc/regroup/config.yaml"},
	}
}

// WithConfigPaths replaces the search list.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load builds the configuration: defaults, then the file, then the environment.
// A file found by searching is optional; one named by path or CONFIG_PATH is not.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path
	if explicit == "" {
		explicit = os.Getenv(configPathEnv)
	}

	switch {
	case explicit != "":
		if err := readFile(cfg, explicit); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", explicit, err)
		}
	default:
		if found := l.search(); found != "" {
			// Searched files are best effort.
			_ = readFile(cfg, found)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnv, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) search() string {
	for _, p := range l.configPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func readFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}
