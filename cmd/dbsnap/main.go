// Command dbsnap captures live database structure snapshots.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/koustreak/dbsnap/internal/config"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/logger"

	// Register dialects
	_ "github.com/koustreak/dbsnap/internal/dialect/mysql"
	_ "github.com/koustreak/dbsnap/internal/dialect/oracle"
	_ "github.com/koustreak/dbsnap/internal/dialect/postgres"
	_ "github.com/koustreak/dbsnap/internal/dialect/sqlite"
)

var version = "dev"

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	envFile    string
	driver     string
	dsn        string
	schema     string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "dbsnap",
		Short: "Capture structure snapshots of live databases",
		Long: `dbsnap reads tables, views, columns, keys, indexes and sequences
from a live database and renders them as YAML or JSON.

Examples:
  dbsnap snapshot --driver postgres --dsn postgres://localhost/shop
  dbsnap describe orders --config dbsnap.yaml
  dbsnap serve --config dbsnap.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file (YAML)")
	pf.StringVar(&g.envFile, "env-file", ".env", "Dotenv file loaded before reading the config")
	pf.StringVar(&g.driver, "driver", "", "Database driver: postgres, mysql or sqlite")
	pf.StringVar(&g.dsn, "dsn", "", "Connection string (overrides $"+config.EnvDSN+")")
	pf.StringVarP(&g.schema, "schema", "s", "", "Schema to capture (default: the dialect's default)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")

	root.AddCommand(
		newSnapshotCmd(g),
		newDescribeCmd(g),
		newServeCmd(g),
		newArchiveCmd(g),
	)

	return root
}

// resolve builds the effective configuration: dotenv, then the config
// file, then flags. Nothing is validated yet.
func (g *globals) resolve() (*config.Config, error) {
	if g.envFile != "" {
		if err := godotenv.Load(g.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", g.envFile, err)
		}
	}

	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	if g.driver != "" {
		cfg.Database.Driver = database.Driver(g.driver)
	}
	if g.dsn != "" {
		cfg.Database.DSN = g.dsn
	}
	if g.schema != "" {
		cfg.Snapshot.Schema = g.schema
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	return cfg, nil
}

func (g *globals) newLogger(cfg *config.Config) *logger.Logger {
	logCfg := cfg.Logging
	logCfg.Output = os.Stderr
	return logger.New(&logCfg)
}

// load resolves and validates the configuration of commands that talk
// to the database.
func (g *globals) load() (*config.Config, *logger.Logger, error) {
	cfg, err := g.resolve()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, g.newLogger(cfg), nil
}

// loadExport is load for commands that only need the object store.
func (g *globals) loadExport() (*config.Config, *logger.Logger, error) {
	cfg, err := g.resolve()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.ExportEnabled() {
		return nil, nil, errors.New("export.endpoint is not configured")
	}
	if err := cfg.Export.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, g.newLogger(cfg), nil
}
