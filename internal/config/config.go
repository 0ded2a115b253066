package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Version is overridden at build time with -ldflags "-X buildbump/internal/config.Version=...".
var Version = "dev"

var (
	// ErrNoPlatform is returned when neither platform toggle is set.
	ErrNoPlatform = errors.New("At least one platform must be selected")
	// ErrMissingPath is returned when no document path was given.
	ErrMissingPath = errors.New("config path is required")
)

// SettingsFiles are the tool settings files looked up in the working directory.
var SettingsFiles = []string{".buildbump.yaml", ".buildbump.yml", ".buildbump.toml"}

// Config holds everything one run needs.
type Config struct {
	// ConfigPath is the app config document to mutate.
	ConfigPath    string `yaml:"config_path" toml:"config_path"`
	UpdateIOS     bool   `yaml:"update_ios" toml:"update_ios"`
	UpdateAndroid bool   `yaml:"update_android" toml:"update_android"`

	// StrictNumbers fails the run when a matched field is not a number.
	// When false the field is rewritten as NaN.
	StrictNumbers bool `yaml:"strict_numbers" toml:"strict_numbers"`

	// DryRun computes the change and reports outputs without writing.
	DryRun bool `yaml:"dry_run" toml:"dry_run"`

	// Targets are extra fields to increment on every run.
	Targets []TargetConfig `yaml:"targets" toml:"targets"`

	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// TargetConfig declares a custom field by dotted path, e.g. "tvos.buildNumber".
type TargetConfig struct {
	Name   string `yaml:"name" toml:"name"`
	Path   string `yaml:"path" toml:"path"`
	Output string `yaml:"output" toml:"output"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		StrictNumbers: true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// FindSettings returns the first settings file present in dir, or "".
func FindSettings(dir string) string {
	for _, name := range SettingsFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads a settings file on top of the defaults and applies environment
// overrides. A missing or empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read settings: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// Save writes the configuration as YAML or TOML depending on the extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// applyEnvOverrides applies BUILDBUMP_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BUILDBUMP_CONFIG_PATH"); v != "" {
		c.ConfigPath = v
	}
	if v := os.Getenv("BUILDBUMP_UPDATE_IOS"); v != "" {
		c.UpdateIOS = IsTrue(v)
	}
	if v := os.Getenv("BUILDBUMP_UPDATE_ANDROID"); v != "" {
		c.UpdateAndroid = IsTrue(v)
	}
	if v := os.Getenv("BUILDBUMP_STRICT_NUMBERS"); v != "" {
		c.StrictNumbers = IsTrue(v)
	}
	if v := os.Getenv("BUILDBUMP_DRY_RUN"); v != "" {
		c.DryRun = IsTrue(v)
	}
	if v := os.Getenv("BUILDBUMP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BUILDBUMP_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// IsTrue implements the toggle rule: only the literal "true" enables.
func IsTrue(v string) bool {
	return v == "true"
}

// Validate checks the run preconditions. The platform check comes first so
// that a run with nothing selected fails before anything else is looked at.
func (c *Config) Validate() error {
	if !c.UpdateIOS && !c.UpdateAndroid {
		return ErrNoPlatform
	}
	if strings.TrimSpace(c.ConfigPath) == "" {
		return ErrMissingPath
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}
