// Package git answers the few questions a coverage report needs from the
// repository: where its root is, which commit is checked out, and which files
// a branch created or modified.
package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/zjy-dev/covreport/internal/exec"
)

// ChangeSet lists the files a branch touched relative to its base, as paths
// relative to the repository root.
type ChangeSet struct {
	Created  []string
	Modified []string
}

// Service runs git commands in a working directory.
type Service struct {
	executor exec.Executor
	dir      string
}

// NewService creates a Service that runs git in dir. An empty dir means the
// process working directory.
func NewService(executor exec.Executor, dir string) *Service {
	return &Service{executor: executor, dir: dir}
}

func (s *Service) git(ctx context.Context, args ...string) (string, error) {
	result, err := s.executor.Run(ctx, s.dir, "git", args...)
	if err != nil {
		return "", errors.Wrapf(err, "failed to run git %s", args[0])
	}
	if !result.Success() {
		return "", errors.Errorf("git %s exited with code %d: %s",
			args[0], result.ExitCode, strings.TrimSpace(result.Stderr))
	}
	return result.Stdout, nil
}

// RootDirectory returns the repository root with a trailing separator. When
// git cannot answer it falls back to the service's directory.
func (s *Service) RootDirectory(ctx context.Context) string {
	out, err := s.git(ctx, "rev-parse", "--show-toplevel")
	if err == nil {
		return ParseGitRootPathOutput(out, "")
	}

	dir := s.dir
	if dir == "" {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			dir = wd
		}
	}
	if abs, absErr := filepath.Abs(dir); absErr == nil {
		dir = abs
	}
	return ParseGitRootPathOutput(dir, "")
}

// CurrentCommit returns the hash of HEAD.
func (s *Service) CurrentCommit(ctx context.Context) (string, error) {
	out, err := s.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return TrimLineEnding(out), nil
}

// ChangedFiles lists the files created and modified between the merge base
// of base and HEAD. Deleted files are left out.
func (s *Service) ChangedFiles(ctx context.Context, base string) (*ChangeSet, error) {
	out, err := s.git(ctx, "diff", "--name-status", "-z", base+"...HEAD")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list changes against %s", base)
	}
	return ParseNameStatus(out)
}

// ParseNameStatus parses the NUL separated output of git diff --name-status -z.
func ParseNameStatus(out string) (*ChangeSet, error) {
	changes := &ChangeSet{}
	fields := strings.Split(strings.TrimSuffix(out, "\x00"), "\x00")
	if len(fields) == 1 && fields[0] == "" {
		return changes, nil
	}

	for i := 0; i < len(fields); {
		status := fields[i]
		if status == "" {
			return nil, errors.Errorf("empty status at field %d", i)
		}

		// Renames and copies carry a source and a destination path.
		paths := 1
		if status[0] == 'R' || status[0] == 'C' {
			paths = 2
		}
		if i+paths >= len(fields) {
			return nil, errors.Errorf("status %q is missing its path", status)
		}
		path := fields[i+paths]

		switch status[0] {
		case 'A':
			changes.Created = append(changes.Created, path)
		case 'M', 'R', 'C', 'T':
			changes.Modified = append(changes.Modified, path)
		}
		i += paths + 1
	}
	return changes, nil
}

var lineEndings = strings.NewReplacer("\r", "", "\n", "")

// TrimLineEnding removes every carriage return and newline from input.
func TrimLineEnding(input string) string {
	return lineEndings.Replace(input)
}

// ParseGitRootPathOutput cleans up the output of git rev-parse --show-toplevel
// and makes sure it ends in separator (the platform separator when empty).
func ParseGitRootPathOutput(stdout string, separator string) string {
	if separator == "" {
		separator = string(filepath.Separator)
	}
	stdout = TrimLineEnding(stdout)
	if strings.HasSuffix(stdout, separator) {
		return stdout
	}
	return stdout + separator
}
