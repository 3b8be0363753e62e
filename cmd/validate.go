package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [location...]",
	Short: "Validate definition documents without keeping the result",
	Long: `Validate loads the given definition locations (or the configured
ones) into a throwaway registry and reports every problem found.

The exit code is non-zero when loading fails outright or when any
problem was recorded.

Examples:
  loom validate defs/app.xml
  loom validate glob:defs/*.xml
  loom validate            # uses locations from the config file`,
	RunE: func(cmd *cobra.Command, args []string) error {
		locations, err := locationsFromArgs(args)
		if err != nil {
			return err
		}

		r, cleanup, err := newReader(newRegistry())
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := r.LoadLocations(cmd.Context(), locations...)
		if err != nil {
			return fmt.Errorf("loading definitions: %w", err)
		}

		for _, p := range result.Problems {
			fmt.Fprintf(os.Stderr, "problem: %s\n", p.Error())
		}
		if n := len(result.Problems); n > 0 {
			return fmt.Errorf("%d problem(s) found in %d document(s)", n, len(result.Resources))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d definitions from %d document(s)\n",
			result.Registered, len(result.Resources))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
