package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ledgerdesk/ledgerdesk/internal/bootstrap"
)

func init() { //nolint: gochecknoinits
	bootstrapCmd.Flags().StringVar(&schemaFile, "schema", "", "Schema script, the embedded default when empty")
	bootstrapCmd.Flags().StringVar(&bootstrapOut, "out", "", "Target database file, replaced if present")
	_ = bootstrapCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(bootstrapCmd)
}

var (
	schemaFile   string
	bootstrapOut string

	bootstrapCmd = &cobra.Command{
		Use:   "bootstrap",
		Short: "Create a fresh database file from the schema and the seed rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := bootstrap.Options{Path: bootstrapOut}

			if schemaFile != "" {
				raw, err := os.ReadFile(schemaFile)
				if err != nil {
					return err //nolint:wrapcheck
				}

				opts.Schema = string(raw)
			}

			report, err := bootstrap.Run(cmd.Context(), opts)
			if err != nil {
				if report != nil {
					if failed := report.Failed(); failed != nil {
						log.Error().Int("statement", failed.Index+1).Str("sql", failed.SQL).Err(failed.Err).Msg("bootstrap aborted")
					}
				}

				return err //nolint:wrapcheck
			}

			for _, st := range report.Statements {
				log.Debug().Int("statement", st.Index+1).Bool("seed", st.Seed).Msg("executed")
			}

			return nil
		},
	}
)
