package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for the alarm registry shell.
type Config struct {
	// Prompt is printed before each interactive command is read.
	Prompt string `yaml:"prompt"`
	// PollInterval is how long the expiry worker sleeps when the
	// registry is empty before checking again.
	PollInterval time.Duration `yaml:"poll_interval"`
	// LogLevel is the minimum level for log output (debug/info/warn/error/fatal).
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for registry settings.
	DefaultConfigFilename = "alarm-registry-settings.yaml"

	// DefaultPrompt is printed when no prompt is configured.
	DefaultPrompt = "alarm> "

	// DefaultPollInterval is the idle wait of the expiry worker.
	DefaultPollInterval = 1 * time.Second

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns a configuration with all fields set to their defaults.
func Default() *Config {
	return &Config{
		Prompt:       DefaultPrompt,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads configuration from the provided path and fills in defaults.
// When the file does not exist and no explicit path was given, the
// defaults are returned so the shell can start without any setup.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults for unset fields and rejects nonsensical values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}

	if cfg.PollInterval < 0 {
		return fmt.Errorf("poll interval must not be negative, got %s", cfg.PollInterval)
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	return nil
}
