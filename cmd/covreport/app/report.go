package app

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covreport/internal/config"
	"github.com/zjy-dev/covreport/internal/coverage"
	"github.com/zjy-dev/covreport/internal/exec"
	"github.com/zjy-dev/covreport/internal/git"
	"github.com/zjy-dev/covreport/internal/logger"
	"github.com/zjy-dev/covreport/internal/parser"
	"github.com/zjy-dev/covreport/internal/report"
)

// errBelowThreshold is returned when the report failed in fail mode.
var errBelowThreshold = errors.New("coverage is below the configured threshold")

type reportFlags struct {
	configPath string
	coverage   []string
	files      []string
	fileSet    string
	mode       string
	sort       string
	entries    int
	threshold  float64
	base       string
	format     string
}

// NewReportCommand creates the "report" subcommand.
func NewReportCommand() *cobra.Command {
	var flags reportFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report coverage for the files changed on the current branch.",
		Long: `Loads the configured coverage reports, selects the files of the chosen file
set and prints a threshold verdict followed by a markdown table.

Settings come from covreport.yaml (or --config), COVREPORT_* environment
variables and finally the flags below.

Examples:
  # Report on the whole codebase using ./coverage/coverage-summary.json
  covreport report

  # Report on files created or modified since origin/main, failing below 80%
  covreport report --coverage coverage/lcov.info --file-set createdOrModified --mode fail --threshold 80

  # Report on an explicit list of files and print the model as YAML
  covreport report --files src/a.ts --files src/b.ts --file-set modified --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(flags.format, formatMarkdown)
			if err != nil {
				return err
			}

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return errors.Wrap(err, "failed to load config")
			}
			if err := applyReportFlags(cmd, cfg, flags); err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-level") {
				logger.SetLevel(cfg.LogLevel)
			}

			var reporter interface {
				report.Reporter
				Failed() bool
			}
			reporter = report.NewConsoleReporter(cmd.OutOrStdout())
			if format != formatMarkdown {
				reporter = &modelOnlyReporter{report.NewConsoleReporter(cmd.ErrOrStderr())}
			}

			deps := report.Deps{
				Fs:       afero.NewOsFs(),
				Git:      git.NewService(exec.NewCommandExecutor(), ""),
				Reporter: reporter,
			}
			if cmd.Flags().Changed("files") {
				deps.Files = flags.files
			}

			result, err := report.Run(cmd.Context(), *cfg, deps)
			if err != nil {
				return errors.Wrap(err, "failed to generate report")
			}

			if result != nil && format != formatMarkdown {
				if err := writeOutput(cmd.OutOrStdout(), format, result.Model); err != nil {
					return err
				}
			}
			if reporter.Failed() {
				return errBelowThreshold
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to the configuration file (default: covreport.yaml in . or configs/)")
	cmd.Flags().StringArrayVar(&flags.coverage, "coverage", nil, "Coverage report as path[:lcov|json-summary]; repeat to merge several")
	cmd.Flags().StringArrayVar(&flags.files, "files", nil, "Changed files to report on instead of asking git; repeatable")
	cmd.Flags().StringVar(&flags.fileSet, "file-set", "", "File set: all, created, modified or createdOrModified")
	cmd.Flags().StringVar(&flags.mode, "mode", "", "How a shortfall is reported: fail, warn or message")
	cmd.Flags().StringVar(&flags.sort, "sort", "", "Entry order: alphabetically, least-coverage, most-coverage, largest-file-size, smallest-file-size or uncovered-lines")
	cmd.Flags().IntVar(&flags.entries, "entries", 0, "Number of files listed individually")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "Minimum percentage for every category")
	cmd.Flags().StringVar(&flags.base, "base", "", "Git revision the branch is compared against")
	cmd.Flags().StringVarP(&flags.format, "format", "f", string(formatMarkdown), "Output format: markdown, json or yaml")

	return cmd
}

// applyReportFlags copies every flag the user set onto cfg and validates the
// result.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config, flags reportFlags) error {
	changed := cmd.Flags().Changed

	if changed("coverage") {
		cfg.CoveragePaths = make([]parser.Source, 0, len(flags.coverage))
		for _, spec := range flags.coverage {
			cfg.CoveragePaths = append(cfg.CoveragePaths, parser.ParseSourceSpec(spec))
		}
	}
	if changed("file-set") {
		set, err := config.ParseReportFileSet(flags.fileSet)
		if err != nil {
			return err
		}
		cfg.ReportFileSet = set
	}
	if changed("mode") {
		mode, err := config.ParseReportMode(flags.mode)
		if err != nil {
			return err
		}
		cfg.ReportMode = mode
	}
	if changed("sort") {
		method, err := coverage.ParseSortMethod(flags.sort)
		if err != nil {
			return err
		}
		cfg.EntrySortMethod = method
	}
	if changed("entries") {
		cfg.NumberOfEntries = flags.entries
	}
	if changed("threshold") {
		cfg.Threshold = coverage.UniformThreshold(flags.threshold)
	}
	if changed("base") {
		cfg.BaseRef = flags.base
	}

	return errors.Wrap(cfg.Validate(), "invalid flags")
}

// modelOnlyReporter keeps the markdown table out of structured output.
type modelOnlyReporter struct {
	*report.ConsoleReporter
}

func (modelOnlyReporter) Markdown(string) {}
