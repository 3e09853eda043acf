// Package report turns coverage data into a pull-request report: it picks the
// files to show, checks them against the configured threshold and hands the
// resulting messages and markdown to a Reporter.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/zjy-dev/covreport/internal/config"
	"github.com/zjy-dev/covreport/internal/coverage"
	"github.com/zjy-dev/covreport/internal/git"
	"github.com/zjy-dev/covreport/internal/logger"
	"github.com/zjy-dev/covreport/internal/parser"
)

// Reporter receives the output of a report run.
type Reporter interface {
	Message(msg string)
	Warn(msg string)
	Fail(msg string)
	Markdown(md string)
}

// GitService is the subset of git.Service a report run needs.
type GitService interface {
	RootDirectory(ctx context.Context) string
	CurrentCommit(ctx context.Context) (string, error)
	ChangedFiles(ctx context.Context, base string) (*git.ChangeSet, error)
}

// Deps are the collaborators of Run.
type Deps struct {
	Fs       afero.Fs
	Git      GitService
	Reporter Reporter
	// Files, when non-nil, replaces git change detection: the list is used as
	// both the created and the modified files.
	Files []string
}

// Result is the outcome of a report run that produced output.
type Result struct {
	Model  *coverage.Model
	Passed bool
}

// Run loads the configured coverage, reports on the selected file set and
// returns the model it rendered. A nil Result with a nil error means there
// was nothing to report.
func Run(ctx context.Context, cfg config.Config, deps Deps) (*Result, error) {
	collection, err := parser.Load(ctx, deps.Fs, cfg.CoveragePaths)
	if errors.Is(err, parser.ErrEmptyData) {
		logger.Debug("coverage data is empty, nothing to report")
		return nil, nil
	}
	if err != nil {
		deps.Reporter.Warn(err.Error())
		return nil, nil
	}
	logger.Debug("loaded coverage for %d files from %d sources", len(collection.Files()), len(cfg.CoveragePaths))

	root := deps.Git.RootDirectory(ctx)
	commit, err := deps.Git.CurrentCommit(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current commit: %w", err)
	}

	var created, modified []string
	switch {
	case deps.Files != nil:
		created = FilterForCoveredFiles(root, deps.Files, collection)
		modified = created
	case cfg.ReportFileSet != config.FileSetAll:
		changes, err := deps.Git.ChangedFiles(ctx, cfg.BaseRef)
		if err != nil {
			return nil, fmt.Errorf("failed to detect changed files: %w", err)
		}
		created = FilterForCoveredFiles(root, changes.Created, collection)
		modified = FilterForCoveredFiles(root, changes.Modified, collection)
	}

	files := SelectFiles(cfg.ReportFileSet, collection.Files(), modified, created)
	logger.Debug("file set %s selected %d files", cfg.ReportFileSet, len(files))
	if len(files) == 0 {
		return nil, nil
	}

	model, err := coverage.MakeModel(cfg.NumberOfEntries, files, collection, cfg.EntrySortMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to build coverage model: %w", err)
	}

	passed := coverage.MeetsThreshold(model.Total, cfg.Threshold)
	sendComment(deps.Reporter, cfg, passed)

	md, err := GenerateMarkdown(root, commit, model, cfg.ReportFileSet)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	deps.Reporter.Markdown(md)

	return &Result{Model: model, Passed: passed}, nil
}

func sendComment(r Reporter, cfg config.Config, passed bool) {
	description := LongDescription(cfg.ReportFileSet)
	if passed {
		msg := cfg.CustomSuccessMessage
		if msg == "" {
			msg = fmt.Sprintf("🎉 Test coverage is looking good for %s", description)
		}
		r.Message(msg)
		return
	}

	msg := cfg.CustomFailureMessage
	if msg == "" {
		msg = fmt.Sprintf("🤔 Hmmm, code coverage is looking low for %s.", description)
	}
	switch cfg.ReportMode {
	case config.ModeFail:
		r.Fail(msg)
	case config.ModeWarn:
		r.Warn(msg)
	default:
		r.Message(msg)
	}
}
