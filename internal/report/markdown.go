package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zjy-dev/covreport/internal/config"
	"github.com/zjy-dev/covreport/internal/coverage"
)

// maxPathLength bounds the link text of a file row.
const maxPathLength = 30

// FormatItem renders an item as "(covered/total) pct%", pct rounded to a
// whole number.
func FormatItem(item coverage.Item) string {
	return fmt.Sprintf("(%s/%s) %s%%",
		formatCount(item.Covered),
		formatCount(item.Total),
		strconv.FormatFloat(math.Round(item.Pct), 'f', 0, 64))
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func row(name string, e coverage.Entry) string {
	return strings.Join([]string{
		name,
		FormatItem(e.Lines),
		FormatItem(e.Statements),
		FormatItem(e.Functions),
		FormatItem(e.Branches),
	}, " | ")
}

// GenerateMarkdown renders model as a markdown table. File names link to the
// file at branch, relative to basePath.
func GenerateMarkdown(basePath, branch string, model *coverage.Model, set config.ReportFileSet) (string, error) {
	parts := []string{
		fmt.Sprintf("## Coverage in %s", ShortDescription(set)),
		"File | Line Coverage | Statement Coverage | Function Coverage | Branch Coverage",
		"---- | ------------: | -----------------: | ----------------: | --------------:",
	}

	for _, file := range model.DisplayedOrder {
		rel, err := filepath.Rel(basePath, file)
		if err != nil {
			rel = file
		}
		pretty, err := PrettyPathName(rel, maxPathLength)
		if err != nil {
			return "", fmt.Errorf("failed to shorten %s: %w", rel, err)
		}
		link := fmt.Sprintf("[%s](../blob/%s/%s)", EscapeMarkdown(pretty), branch, filepath.ToSlash(rel))
		parts = append(parts, row(link, model.Displayed[file]))
	}

	if model.ElidedCount > 0 {
		parts = append(parts, row(fmt.Sprintf("Other (%d more)", model.ElidedCount), model.Elided))
	}
	parts = append(parts, row("Total", model.Total), "")

	return strings.Join(parts, "\n"), nil
}
