package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/asklet/pkg/asklet/belief"
	"github.com/cognicore/asklet/pkg/asklet/internalerr"
	"github.com/cognicore/asklet/pkg/asklet/session"
)

// Knowledge sources an oracle can be built from
const (
	SourceMatrix = "matrix"
	SourceDomain = "domain"
	SourceShell  = "shell"
)

// Config selects and configures one oracle
type Config struct {
	Source      string       `yaml:"source"`
	Matrix      string       `yaml:"matrix"`
	Database    string       `yaml:"database"`
	SessionFile string       `yaml:"session_file"`
	LogLevel    string       `yaml:"log_level"`
	Seed        uint64       `yaml:"seed"`
	Scale       belief.Scale `yaml:"scale"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Source:      SourceMatrix,
		SessionFile: session.DefaultPath(),
		LogLevel:    "info",
		Scale:       belief.DefaultScale,
	}
}

// Load reads a YAML config file on top of Default
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return &cfg, nil
}

// LoadEnv loads a dotenv file into the process environment if it exists.
// Variables already set in the environment take precedence.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from ASKLET_* environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ASKLET_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("ASKLET_MATRIX"); v != "" {
		c.Matrix = v
	}
	if v := os.Getenv("ASKLET_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("ASKLET_SESSION_FILE"); v != "" {
		c.SessionFile = v
	}
	if v := os.Getenv("ASKLET_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ASKLET_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: ASKLET_SEED: %v", internalerr.ErrInvalidConfig, err)
		}
		c.Seed = seed
	}
	return nil
}

// Validate checks that the selected source has what it needs
func (c Config) Validate() error {
	switch c.Source {
	case SourceMatrix:
		if c.Matrix == "" {
			return fmt.Errorf("%w: matrix source requires a matrix file", internalerr.ErrInvalidConfig)
		}
	case SourceDomain:
		if c.Database == "" {
			return fmt.Errorf("%w: domain source requires a database", internalerr.ErrInvalidConfig)
		}
	case SourceShell:
		if c.SessionFile == "" {
			return fmt.Errorf("%w: shell source requires a session file", internalerr.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", internalerr.ErrInvalidConfig, c.Source)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", internalerr.ErrInvalidConfig, c.LogLevel)
	}

	return c.Scale.Validate()
}
