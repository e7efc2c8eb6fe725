package app

import (
	"github.com/spf13/cobra"

	"github.com/ledgerdesk/ledgerdesk/internal/build"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:     "build",
	Short:   "Write the license and the blank database template, then run the web bundle and installer steps",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return build.New(cfg.Build).Run(cmd.Context()) //nolint:wrapcheck
	},
}
