package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/csrf-diag/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "csrf-diag",
	Short: "CSRF token diagnostic tool",
	Long: `csrf-diag analyzes browser console logs, request headers and tRPC response
bodies to explain why a CSRF-protected request (typically the admin login) fails.

Examples:
  csrf-diag                                   # interactive mode
  csrf-diag --console-log console.log
  csrf-diag --network headers.txt --response response.json
  csrf-diag analyze --console-log console.log --format json --save before.json
  csrf-diag compare before.json after.json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if rootOpts.any() {
			return runAnalyze(cmd, rootOpts)
		}
		return runInteractive(cmd, rootOpts)
	},
}

var (
	DebugMode bool
	rootOpts  = &analyzeOptions{}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.DebugEnabled = DebugMode
	}
	addAnalyzeFlags(rootCmd, rootOpts)
}
