package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/csrf-diag/pkg/engine"
	"github.com/user/csrf-diag/pkg/wrappers"
)

var compareCmd = &cobra.Command{
	Use:   "compare BASELINE CURRENT",
	Short: "Compare two saved snapshots (e.g. before and after a fix)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseline := engine.NewSession()
		if err := baseline.LoadSnapshot(args[0]); err != nil {
			return fmt.Errorf("loading baseline: %w", err)
		}
		current := engine.NewSession()
		if err := current.LoadSnapshot(args[1]); err != nil {
			return fmt.Errorf("loading current: %w", err)
		}

		diff := current.CompareSnapshot(baseline)
		fmt.Fprint(cmd.OutOrStdout(), wrappers.FormatDiff(args[0], diff))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
}
