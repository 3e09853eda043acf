package app

import (
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covreport/internal/logger"
)

// NewCovreportCommand creates the root command for the covreport tool.
func NewCovreportCommand() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "covreport",
		Short: "Summarize code coverage for a pull request.",
		Long: `covreport reads LCOV and istanbul JSON-summary coverage reports, merges them
and reports how well the files of a pull request are covered.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Init(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(NewReportCommand())
	cmd.AddCommand(NewParseCommand())

	return cmd
}
