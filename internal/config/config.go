// Package config loads the dbsnap configuration file.
//
// Every section has defaults, so an empty or missing file is valid as
// long as a DSN arrives some other way (flag or DBSNAP_DSN).
package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/dialect"
	"github.com/koustreak/dbsnap/internal/errs"
	"github.com/koustreak/dbsnap/internal/filestore"
	"github.com/koustreak/dbsnap/internal/logger"
)

// EnvDSN overrides database.dsn when set.
const EnvDSN = "DBSNAP_DSN"

// Config is the root of the configuration file.
type Config struct {
	Database database.Config  `yaml:"database"`
	Snapshot SnapshotConfig   `yaml:"snapshot"`
	Logging  logger.Config    `yaml:"logging"`
	Export   filestore.Config `yaml:"export"`
	Server   ServerConfig     `yaml:"server"`
}

// SnapshotConfig tunes the capture.
type SnapshotConfig struct {
	// Schema to read; "" means the dialect's default.
	Schema      string          `yaml:"schema"`
	Dialect     dialect.Options `yaml:"dialect"`
	Concurrency int             `yaml:"concurrency"`
	// Format of rendered reports: yaml or json.
	Format string `yaml:"format"`
}

// ServerConfig configures `dbsnap serve`.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	exp := filestore.DefaultConfig("", "", "")
	return &Config{
		Database: *database.DefaultConfig(""),
		Snapshot: SnapshotConfig{
			Dialect:     dialect.DefaultOptions(),
			Concurrency: 4,
			Format:      "yaml",
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "console",
			TimeFormat: "rfc3339",
		},
		Export: *exp,
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 3 * time.Minute,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is "".
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, errs.Wrap(errs.ErrKindNotFound, "config file "+path+" not found", err)
			}
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "read config file "+path, err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindInvalidInput, "parse config", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		c.Database.DSN = dsn
	}
}

// ExportEnabled reports whether an export endpoint is configured.
func (c *Config) ExportEnabled() bool {
	return c.Export.Endpoint != ""
}

// Validate checks every section that will be used.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Snapshot.Concurrency < 0 {
		return errs.New(errs.ErrKindInvalidInput, "snapshot.concurrency must not be negative")
	}
	switch c.Snapshot.Format {
	case "yaml", "json":
	default:
		return errs.New(errs.ErrKindInvalidInput, "snapshot.format must be yaml or json")
	}
	if c.ExportEnabled() {
		if err := c.Export.Validate(); err != nil {
			return err
		}
	}
	return nil
}
