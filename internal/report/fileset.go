package report

import (
	"path/filepath"

	"github.com/zjy-dev/covreport/internal/config"
	"github.com/zjy-dev/covreport/internal/coverage"
)

// SelectFiles returns the file list matching set. For createdOrModified the
// created files come first, followed by modified files not already listed.
func SelectFiles(set config.ReportFileSet, all, modified, created []string) []string {
	switch set {
	case config.FileSetAll:
		return all
	case config.FileSetModified:
		return modified
	case config.FileSetCreated:
		return created
	}
	return union(created, modified)
}

func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, f := range list {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// FilterForCoveredFiles resolves each file against basePath and keeps the
// ones the collection has coverage for. A file whose resolved path is unknown
// is kept as given when the collection uses relative keys.
func FilterForCoveredFiles(basePath string, files []string, c coverage.Collection) []string {
	var out []string
	for _, f := range files {
		resolved := f
		if !filepath.IsAbs(f) {
			resolved = filepath.Join(basePath, f)
		}
		switch {
		case has(c, resolved):
			out = append(out, resolved)
		case has(c, f):
			out = append(out, f)
		}
	}
	return union(out)
}

func has(c coverage.Collection, file string) bool {
	if file == coverage.TotalKey {
		return false
	}
	_, ok := c[file]
	return ok
}

// LongDescription describes a file set inside a sentence.
func LongDescription(set config.ReportFileSet) string {
	switch set {
	case config.FileSetAll:
		return "the whole codebase"
	case config.FileSetCreated:
		return "the new files in this PR"
	case config.FileSetModified:
		return "the modified files in this PR"
	}
	return "the modified or changed files in this PR"
}

// ShortDescription is the title form of a file set.
func ShortDescription(set config.ReportFileSet) string {
	switch set {
	case config.FileSetAll:
		return "All Files"
	case config.FileSetCreated:
		return "New Files"
	case config.FileSetModified:
		return "Modified Files"
	}
	return "Created or Modified Files"
}
