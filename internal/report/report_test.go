package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covreport/internal/config"
	"github.com/zjy-dev/covreport/internal/coverage"
	"github.com/zjy-dev/covreport/internal/git"
	"github.com/zjy-dev/covreport/internal/parser"
)

const summaryPath = "/repo/coverage/coverage-summary.json"

type recordingReporter struct {
	messages []string
	warnings []string
	failures []string
	markdown []string
}

func (r *recordingReporter) Message(msg string) { r.messages = append(r.messages, msg) }
func (r *recordingReporter) Warn(msg string)    { r.warnings = append(r.warnings, msg) }
func (r *recordingReporter) Fail(msg string)    { r.failures = append(r.failures, msg) }
func (r *recordingReporter) Markdown(md string) { r.markdown = append(r.markdown, md) }

type fakeGit struct {
	changes     *git.ChangeSet
	commitErr   error
	changedRefs []string
}

func (f *fakeGit) RootDirectory(context.Context) string { return "/repo/" }

func (f *fakeGit) CurrentCommit(context.Context) (string, error) {
	if f.commitErr != nil {
		return "", f.commitErr
	}
	return "abc123", nil
}

func (f *fakeGit) ChangedFiles(_ context.Context, base string) (*git.ChangeSet, error) {
	f.changedRefs = append(f.changedRefs, base)
	if f.changes == nil {
		return &git.ChangeSet{}, nil
	}
	return f.changes, nil
}

func setupRun(t *testing.T) (config.Config, Deps, *recordingReporter, *fakeGit) {
	t.Helper()

	fs := afero.NewMemMapFs()
	data, err := json.Marshal(coverage.Collection{
		"/repo/src/a.ts": entry(10, 5),
		"/repo/src/b.ts": entry(4, 4),
		"/repo/src/c.ts": entry(2, 0),
	})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, summaryPath, data, 0644))

	cfg := config.Default()
	cfg.CoveragePaths = []parser.Source{parser.NewSource(summaryPath, "")}

	reporter := &recordingReporter{}
	g := &fakeGit{}
	return cfg, Deps{Fs: fs, Git: g, Reporter: reporter}, reporter, g
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("should report a shortfall through the configured mode", func(t *testing.T) {
		cfg, deps, reporter, g := setupRun(t)
		cfg.ReportMode = config.ModeFail

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.False(t, result.Passed)
		assert.Equal(t, []string{"🤔 Hmmm, code coverage is looking low for the whole codebase."}, reporter.failures)
		assert.Empty(t, reporter.messages)
		require.Len(t, reporter.markdown, 1)
		assert.Contains(t, reporter.markdown[0], "[src/a.ts](../blob/abc123/src/a.ts)")
		assert.Empty(t, g.changedRefs, "the whole codebase needs no diff")
	})

	t.Run("should use the warn mode", func(t *testing.T) {
		cfg, deps, reporter, _ := setupRun(t)
		cfg.ReportMode = config.ModeWarn
		cfg.CustomFailureMessage = "not enough tests"

		_, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Equal(t, []string{"not enough tests"}, reporter.warnings)
	})

	t.Run("should send a message when the threshold is met", func(t *testing.T) {
		cfg, deps, reporter, _ := setupRun(t)
		cfg.Threshold = coverage.UniformThreshold(50)

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.True(t, result.Passed)
		assert.Equal(t, []string{"🎉 Test coverage is looking good for the whole codebase"}, reporter.messages)

		cfg.CustomSuccessMessage = "ship it"
		reporter.messages = nil
		_, err = Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Equal(t, []string{"ship it"}, reporter.messages)
	})

	t.Run("should limit the report to changed files", func(t *testing.T) {
		cfg, deps, reporter, g := setupRun(t)
		cfg.ReportFileSet = config.FileSetCreatedOrModified
		cfg.BaseRef = "origin/develop"
		g.changes = &git.ChangeSet{
			Created:  []string{"src/c.ts"},
			Modified: []string{"src/a.ts", "src/deleted-coverage.ts"},
		}

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Equal(t, []string{"origin/develop"}, g.changedRefs)
		assert.Equal(t, []string{"/repo/src/a.ts", "/repo/src/c.ts"}, result.Model.DisplayedOrder)
		assert.Equal(t, 12.0, result.Model.Total.Lines.Total)
		assert.Contains(t, reporter.markdown[0], "## Coverage in Created or Modified Files")
	})

	t.Run("should use an explicit file list instead of git", func(t *testing.T) {
		cfg, deps, _, g := setupRun(t)
		cfg.ReportFileSet = config.FileSetModified
		deps.Files = []string{"src/b.ts"}

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Empty(t, g.changedRefs)
		assert.Equal(t, []string{"/repo/src/b.ts"}, result.Model.DisplayedOrder)
		assert.True(t, result.Passed)
	})

	t.Run("should stay quiet when no files match", func(t *testing.T) {
		cfg, deps, reporter, _ := setupRun(t)
		cfg.ReportFileSet = config.FileSetCreated

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Empty(t, reporter.messages)
		assert.Empty(t, reporter.markdown)
	})

	t.Run("should warn when coverage cannot be loaded", func(t *testing.T) {
		cfg, deps, reporter, _ := setupRun(t)
		cfg.CoveragePaths = []parser.Source{parser.NewSource("/repo/missing.json", "")}

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Nil(t, result)
		require.Len(t, reporter.warnings, 1)
		assert.Contains(t, reporter.warnings[0], "couldn't find coverage file at path '/repo/missing.json'")
	})

	t.Run("should stay quiet on empty coverage data", func(t *testing.T) {
		cfg, deps, reporter, _ := setupRun(t)
		require.NoError(t, afero.WriteFile(deps.Fs, "/repo/empty.json", []byte("{}"), 0644))
		cfg.CoveragePaths = []parser.Source{parser.NewSource("/repo/empty.json", "")}

		result, err := Run(ctx, cfg, deps)
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Empty(t, reporter.warnings)
		assert.Empty(t, reporter.markdown)
	})

	t.Run("should return git failures", func(t *testing.T) {
		cfg, deps, _, g := setupRun(t)
		g.commitErr = errors.New("not a repository")

		_, err := Run(ctx, cfg, deps)
		assert.ErrorContains(t, err, "failed to resolve current commit")
	})
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.Message("all good")
	r.Warn("careful")
	assert.False(t, r.Failed())
	r.Fail("too low")
	r.Markdown("## table\n")

	out := buf.String()
	assert.Contains(t, out, "all good\n")
	assert.Contains(t, out, "warning: careful\n")
	assert.Contains(t, out, "failure: too low\n")
	assert.Contains(t, out, "## table\n")
	assert.True(t, r.Failed())
}
