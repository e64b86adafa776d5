// Package cmd provides the CLI commands for the bylaw search engine.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadiqawos/toronto2.0/internal/config"
	"github.com/sadiqawos/toronto2.0/internal/logging"
	"github.com/sadiqawos/toronto2.0/internal/store"
	"github.com/sadiqawos/toronto2.0/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the bylaw CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bylaw",
		Short: "Keyword search over Toronto municipal codes and bylaws",
		Long: `bylaw ingests municipal codes and zoning bylaws into a local
provision index and answers free-text questions against it.

Ingestion fetches each catalogued chapter, segments it into citable
provisions, and indexes them for ranked keyword search. Informal
phrasing is bridged to legal vocabulary with 'bylaw expand'.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("bylaw version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
	}

	cmd.AddCommand(newCatalogCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newExpandCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.FilePath = cfg.Log.File
	if debugMode {
		logCfg.Level = "debug"
	}

	_, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	loggingCleanup = cleanup
	return nil
}

// loadConfig returns the effective configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// openStore opens the provision store per config.
func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open provision store: %w", err)
	}
	return s, nil
}

// openTermIndex returns the external term index for the configured
// backend, or nil when the store's built-in index serves search.
func openTermIndex(cfg *config.Config) (store.TermIndex, error) {
	return store.NewTermIndex(cfg.DataDir, store.IndexBackend(cfg.Search.Backend))
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
