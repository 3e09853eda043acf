package app

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covreport/internal/coverage"
	"github.com/zjy-dev/covreport/internal/parser"
)

// NewParseCommand creates the "parse" subcommand.
func NewParseCommand() *cobra.Command {
	var (
		typ    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "parse <path>...",
		Short: "Print the normalized coverage of one or more reports.",
		Long: `Parses LCOV and istanbul JSON-summary reports, merges them (later files win
on duplicate paths) and prints the result in the istanbul JSON-summary shape.

The format of each file is inferred from its extension (.info and .lcov are
LCOV) unless --type is given or the path ends in :lcov or :json-summary.

Examples:
  covreport parse coverage/lcov.info
  covreport parse unit/coverage-summary.json e2e/lcov.info --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := parseOutputFormat(format, formatJSON)
			if err != nil {
				return err
			}

			sources := make([]parser.Source, 0, len(args))
			for _, arg := range args {
				src := parser.ParseSourceSpec(arg)
				if cmd.Flags().Changed("type") {
					f, err := parser.ParseFormat(typ)
					if err != nil {
						return err
					}
					src = parser.NewSource(src.Path, f)
				}
				sources = append(sources, src)
			}

			collection, err := parser.Load(cmd.Context(), afero.NewOsFs(), sources)
			if err != nil && !errors.Is(err, parser.ErrEmptyData) {
				return errors.Wrap(err, "failed to parse coverage")
			}
			if collection == nil {
				collection = coverage.Collection{}
			}
			return writeOutput(cmd.OutOrStdout(), out, collection)
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "Force the report type: lcov or json-summary")
	cmd.Flags().StringVarP(&format, "format", "f", string(formatJSON), "Output format: json or yaml")

	return cmd
}
