// Package app implements the main application commands.
package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ledgerdesk/ledgerdesk/internal/config"
	"github.com/ledgerdesk/ledgerdesk/internal/logger"
	"github.com/ledgerdesk/ledgerdesk/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerdesk",
	Short: "LedgerDesk is the local persistence backend of the LedgerDesk accounting app",
	Long: `LedgerDesk owns the accounting database file of the desktop app and
serves the bridge channels the UI uses to query, update, back up and restore it.`,
	Args:          cobra.OnlyValidArgs,
	Version:       version.Full(),
	SilenceUsage:  true,
}

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Directory holding main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// loadConfig reads the configuration and initializes the global logger from it.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err //nolint:wrapcheck
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log) //nolint:wrapcheck
}
