package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/zjy-dev/covreport/internal/coverage"
	"github.com/zjy-dev/covreport/internal/parser"
)

// ReportFileSet selects which files a report covers.
type ReportFileSet string

const (
	FileSetAll               ReportFileSet = "all"
	FileSetCreated           ReportFileSet = "created"
	FileSetModified          ReportFileSet = "modified"
	FileSetCreatedOrModified ReportFileSet = "createdOrModified"
)

var fileSets = []ReportFileSet{FileSetAll, FileSetCreated, FileSetModified, FileSetCreatedOrModified}

// ParseReportFileSet converts a string to a ReportFileSet.
func ParseReportFileSet(s string) (ReportFileSet, error) {
	if !slices.Contains(fileSets, ReportFileSet(s)) {
		return "", fmt.Errorf("unknown report file set %q", s)
	}
	return ReportFileSet(s), nil
}

// ReportMode selects how a coverage shortfall is reported.
type ReportMode string

const (
	ModeFail    ReportMode = "fail"
	ModeWarn    ReportMode = "warn"
	ModeMessage ReportMode = "message"
)

var reportModes = []ReportMode{ModeFail, ModeWarn, ModeMessage}

// ParseReportMode converts a string to a ReportMode.
func ParseReportMode(s string) (ReportMode, error) {
	if !slices.Contains(reportModes, ReportMode(s)) {
		return "", fmt.Errorf("unknown report mode %q", s)
	}
	return ReportMode(s), nil
}

// Config is the complete configuration of a report run.
type Config struct {
	CoveragePaths        []parser.Source
	ReportFileSet        ReportFileSet
	ReportMode           ReportMode
	EntrySortMethod      coverage.SortMethod
	NumberOfEntries      int
	Threshold            coverage.Threshold
	CustomSuccessMessage string
	CustomFailureMessage string
	// BaseRef is the git revision the current branch is compared against.
	BaseRef  string
	LogLevel string
}

// ThresholdOverride sets individual threshold categories.
type ThresholdOverride struct {
	Statements *float64 `mapstructure:"statements"`
	Branches   *float64 `mapstructure:"branches"`
	Functions  *float64 `mapstructure:"functions"`
	Lines      *float64 `mapstructure:"lines"`
}

// Override holds user supplied settings. Nil fields keep their default.
type Override struct {
	CoveragePaths        []parser.Source      `mapstructure:"coverage_paths"`
	ReportFileSet        *ReportFileSet       `mapstructure:"report_file_set"`
	ReportMode           *ReportMode          `mapstructure:"report_mode"`
	EntrySortMethod      *coverage.SortMethod `mapstructure:"entry_sort_method"`
	NumberOfEntries      *int                 `mapstructure:"number_of_entries"`
	Threshold            ThresholdOverride    `mapstructure:"threshold"`
	CustomSuccessMessage *string              `mapstructure:"custom_success_message"`
	CustomFailureMessage *string              `mapstructure:"custom_failure_message"`
	BaseRef              *string              `mapstructure:"base_ref"`
	LogLevel             *string              `mapstructure:"log_level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		CoveragePaths:   []parser.Source{parser.NewSource("./coverage/coverage-summary.json", parser.FormatJSONSummary)},
		ReportFileSet:   FileSetAll,
		ReportMode:      ModeMessage,
		EntrySortMethod: coverage.SortAlphabetically,
		NumberOfEntries: 20,
		Threshold:       coverage.UniformThreshold(100),
		BaseRef:         "origin/main",
		LogLevel:        "info",
	}
}

// Complete applies o on top of Default.
func Complete(o Override) Config {
	cfg := Default()

	if len(o.CoveragePaths) > 0 {
		cfg.CoveragePaths = make([]parser.Source, 0, len(o.CoveragePaths))
		for _, src := range o.CoveragePaths {
			cfg.CoveragePaths = append(cfg.CoveragePaths, parser.NewSource(src.Path, src.Type))
		}
	}
	setIfPresent(&cfg.ReportFileSet, o.ReportFileSet)
	setIfPresent(&cfg.ReportMode, o.ReportMode)
	setIfPresent(&cfg.EntrySortMethod, o.EntrySortMethod)
	setIfPresent(&cfg.NumberOfEntries, o.NumberOfEntries)
	setIfPresent(&cfg.Threshold.Statements, o.Threshold.Statements)
	setIfPresent(&cfg.Threshold.Branches, o.Threshold.Branches)
	setIfPresent(&cfg.Threshold.Functions, o.Threshold.Functions)
	setIfPresent(&cfg.Threshold.Lines, o.Threshold.Lines)
	setIfPresent(&cfg.CustomSuccessMessage, o.CustomSuccessMessage)
	setIfPresent(&cfg.CustomFailureMessage, o.CustomFailureMessage)
	setIfPresent(&cfg.BaseRef, o.BaseRef)
	setIfPresent(&cfg.LogLevel, o.LogLevel)

	return cfg
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	var errs []error

	if len(c.CoveragePaths) == 0 {
		errs = append(errs, errors.New("at least one coverage path is required"))
	}
	for _, src := range c.CoveragePaths {
		if src.Path == "" {
			errs = append(errs, errors.New("coverage path must not be empty"))
		}
		if _, err := parser.ParseFormat(string(src.Type)); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := ParseReportFileSet(string(c.ReportFileSet)); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseReportMode(string(c.ReportMode)); err != nil {
		errs = append(errs, err)
	}
	if _, err := coverage.ParseSortMethod(string(c.EntrySortMethod)); err != nil {
		errs = append(errs, err)
	}
	if c.NumberOfEntries < 0 {
		errs = append(errs, fmt.Errorf("number of entries must not be negative, got %d", c.NumberOfEntries))
	}
	for name, v := range map[string]float64{
		"statements": c.Threshold.Statements,
		"branches":   c.Threshold.Branches,
		"functions":  c.Threshold.Functions,
		"lines":      c.Threshold.Lines,
	} {
		if v < 0 || v > 100 {
			errs = append(errs, fmt.Errorf("%s threshold must be between 0 and 100, got %g", name, v))
		}
	}

	return errors.Join(errs...)
}

// envKeys are the settings that can also come from COVREPORT_* variables.
var envKeys = []string{
	"report_file_set",
	"report_mode",
	"entry_sort_method",
	"number_of_entries",
	"threshold.statements",
	"threshold.branches",
	"threshold.functions",
	"threshold.lines",
	"custom_success_message",
	"custom_failure_message",
	"base_ref",
	"log_level",
}

// Load reads a YAML configuration file on top of the defaults.
//
// With an empty path it looks for covreport.yaml in the working directory and
// in configs/, and falls back to the defaults when neither exists.
// COVREPORT_* environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("covreport")
		v.AddConfigPath(".")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix("COVREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var o Override
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		sourceDecodeHook,
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&o, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	cfg := Complete(o)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// sourceDecodeHook lets coverage_paths entries be written as plain strings
// ("path" or "path:type") as well as {path, type} maps.
func sourceDecodeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(parser.Source{}) {
		return data, nil
	}
	return parser.ParseSourceSpec(data.(string)), nil
}
