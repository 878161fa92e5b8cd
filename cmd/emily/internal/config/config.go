// Package config holds the emily CLI configuration.
//
// The file lives at os.UserConfigDir()/emily/config.yaml, or under
// $EMILY_CONFIG_DIR when that is set:
//
//	corpus: s3://chorales/bach
//	database: /home/me/.config/emily/db
//	s3:
//	  region: eu-west-1
//	compose:
//	  max_attempts: 20000
//	preview:
//	  bpm: 72
//
// Flags given on the command line override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/DougThompson1976/i-love-emily/pkg/compose"
)

const (
	appDir     = "emily"
	configFile = "config.yaml"
	dbDir      = "db"

	// EnvDir overrides the configuration directory.
	EnvDir = "EMILY_CONFIG_DIR"
)

// Config is the persisted CLI configuration.
type Config struct {
	// Dir is the configuration directory. Not persisted.
	Dir string `yaml:"-" json:"-"`

	// Corpus is the default corpus location: a directory or s3://bucket/prefix.
	Corpus string `yaml:"corpus,omitempty" json:"corpus,omitempty"`

	// Database is the badger directory. Empty means Dir/db.
	Database string `yaml:"database,omitempty" json:"database,omitempty"`

	S3      S3             `yaml:"s3,omitempty" json:"s3,omitempty"`
	Compose compose.Config `yaml:"compose,omitempty" json:"compose,omitempty"`
	Preview Preview        `yaml:"preview,omitempty" json:"preview,omitempty"`
}

// S3 configures the client used for s3:// corpus locations. Credentials
// come from the usual AWS environment and shared config files.
type S3 struct {
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty" json:"path_style,omitempty"`
}

// Preview configures WAV rendering.
type Preview struct {
	BPM        float64 `yaml:"bpm,omitempty" json:"bpm,omitempty"`
	SampleRate int     `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"`
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	if dir := os.Getenv(EnvDir); dir != "" {
		return LoadFrom(dir)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine config directory: %w", err)
	}
	return LoadFrom(filepath.Join(base, appDir))
}

// LoadFrom loads the configuration in dir. A missing file is an empty config.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{Dir: dir}
	data, err := os.ReadFile(cfg.Path())
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cfg.Path(), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", cfg.Path(), err)
	}
	return cfg, nil
}

// Path is the config file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, configFile)
}

// DatabaseDir returns the badger directory to use.
func (c *Config) DatabaseDir() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.Dir, dbDir)
}

// Save writes the config file, creating the directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", c.Path(), err)
	}
	return nil
}

// Keys lists the dotted keys Set accepts.
var Keys = []string{
	"corpus",
	"database",
	"s3.region",
	"s3.endpoint",
	"s3.path_style",
	"compose.max_attempts",
	"compose.min_steps",
	"compose.min_length",
	"compose.max_length",
	"compose.cadence_wait",
	"preview.bpm",
	"preview.sample_rate",
}

// Set assigns value to a dotted key such as "compose.max_attempts". The
// value is read as YAML, so numbers and booleans keep their type.
func (c *Config) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("reread config: %w", err)
	}

	parent, leaf, _ := strings.Cut(key, ".")
	if leaf == "" {
		m[parent] = value
	} else {
		var v any
		if err := yaml.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		sub, _ := m[parent].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
		}
		sub[leaf] = v
		m[parent] = sub
	}

	if data, err = yaml.Marshal(m); err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	next := Config{Dir: c.Dir}
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	*c = next
	return nil
}
