package app

import (
	"github.com/spf13/cobra"

	"github.com/ledgerdesk/ledgerdesk/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "Start the bridge service",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		return d.Start()
	},
}
