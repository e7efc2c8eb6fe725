package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerdesk/ledgerdesk/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(callCmd)
}

var callCmd = &cobra.Command{
	Use:   "call <channel> [json]",
	Short: "Run one bridge channel in process and print its outcome",
	Long: `Run one bridge channel against the configured database without starting the
web service, e.g. ledgerdesk call db-query '{"sql":"SELECT * FROM settings"}'.`,
	Args:    cobra.RangeArgs(1, 2), //nolint:mnd
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err //nolint:wrapcheck
		}

		defer func() {
			if errClose := d.Close(); errClose != nil && err == nil {
				err = errClose
			}
		}()

		var raw json.RawMessage
		if len(args) == 2 { //nolint:mnd
			raw = json.RawMessage(strings.TrimSpace(args[1]))
		}

		out, err := json.MarshalIndent(d.Bridge().Call(cmd.Context(), args[0], raw), "", "  ")
		if err != nil {
			return err //nolint:wrapcheck
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return err //nolint:wrapcheck
	},
}
