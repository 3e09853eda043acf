package coverage

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMethod selects how files are ordered in a report.
type SortMethod string

const (
	SortAlphabetically   SortMethod = "alphabetically"
	SortLeastCoverage    SortMethod = "least-coverage"
	SortMostCoverage     SortMethod = "most-coverage"
	SortLargestFileSize  SortMethod = "largest-file-size"
	SortSmallestFileSize SortMethod = "smallest-file-size"
	SortUncoveredLines   SortMethod = "uncovered-lines"
)

// SortMethods lists every supported method.
var SortMethods = []SortMethod{
	SortAlphabetically,
	SortLeastCoverage,
	SortMostCoverage,
	SortLargestFileSize,
	SortSmallestFileSize,
	SortUncoveredLines,
}

// ParseSortMethod converts a string to a SortMethod.
func ParseSortMethod(s string) (SortMethod, error) {
	m := SortMethod(s)
	if !slices.Contains(SortMethods, m) {
		return "", fmt.Errorf("unknown sort method %q", s)
	}
	return m, nil
}

// SortFiles returns the files present in c, stably sorted by method.
// Files missing from c are dropped.
func SortFiles(files []string, c Collection, method SortMethod) ([]string, error) {
	sorted := c.Filter(files)

	var compare func(a, b string) int
	switch method {
	case SortAlphabetically:
		// Collators keep internal buffers, so each sort gets its own.
		collator := collate.New(language.AmericanEnglish)
		compare = collator.CompareString
	case SortLeastCoverage:
		compare = func(a, b string) int { return cmp.Compare(c[a].Lines.Pct, c[b].Lines.Pct) }
	case SortMostCoverage:
		compare = func(a, b string) int { return cmp.Compare(c[b].Lines.Pct, c[a].Lines.Pct) }
	case SortLargestFileSize:
		compare = func(a, b string) int { return cmp.Compare(c[b].Lines.Total, c[a].Lines.Total) }
	case SortSmallestFileSize:
		compare = func(a, b string) int { return cmp.Compare(c[a].Lines.Total, c[b].Lines.Total) }
	case SortUncoveredLines:
		compare = func(a, b string) int { return cmp.Compare(c[b].Lines.Skipped, c[a].Lines.Skipped) }
	default:
		return nil, fmt.Errorf("unknown sort method %q", method)
	}

	slices.SortStableFunc(sorted, compare)
	return sorted, nil
}

// MakeModel ranks files by method and splits them into at most
// numberOfEntries displayed files plus one aggregate of the rest.
func MakeModel(numberOfEntries int, files []string, c Collection, method SortMethod) (*Model, error) {
	sorted, err := SortFiles(files, c, method)
	if err != nil {
		return nil, err
	}

	limit := min(max(numberOfEntries, 0), len(sorted))
	displayedFiles := sorted[:limit]
	elidedFiles := sorted[limit:]

	displayed := make(Collection, len(displayedFiles))
	for _, f := range displayedFiles {
		displayed[f] = c[f]
	}

	elided := ReduceEntries(c.Entries(elidedFiles))
	total := ReduceEntries(append(c.Entries(displayedFiles), elided))

	return &Model{
		Displayed:      displayed,
		DisplayedOrder: slices.Clone(displayedFiles),
		Elided:         elided,
		ElidedCount:    len(elidedFiles),
		Total:          total,
	}, nil
}
