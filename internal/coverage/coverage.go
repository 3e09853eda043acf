// Package coverage holds the canonical coverage types and the pure arithmetic,
// ranking and threshold logic that operates on them.
package coverage

// TotalKey is the key istanbul uses for its own summary row in a json-summary
// report. It is never treated as a source file.
const TotalKey = "total"

// Item is the coverage of one metric category: how many units exist, how many
// were hit, how many were not, and the percentage hit.
//
// Pct is stored rather than derived. It is only guaranteed to agree with
// Covered/Total as produced by a parser or by CombineItems.
type Item struct {
	Total   float64 `json:"total" yaml:"total"`
	Covered float64 `json:"covered" yaml:"covered"`
	Skipped float64 `json:"skipped" yaml:"skipped"`
	Pct     float64 `json:"pct" yaml:"pct"`
}

// NewItem builds an Item from raw counts. A zero total yields a NaN percentage.
func NewItem(total, covered float64) Item {
	return Item{
		Total:   total,
		Covered: covered,
		Skipped: total - covered,
		Pct:     covered / total * 100,
	}
}

// Entry is the coverage of a single file, or of an aggregate of files, across
// the four categories.
type Entry struct {
	Lines      Item `json:"lines" yaml:"lines"`
	Functions  Item `json:"functions" yaml:"functions"`
	Statements Item `json:"statements" yaml:"statements"`
	Branches   Item `json:"branches" yaml:"branches"`
}

// Collection maps a source file path to its coverage entry.
type Collection map[string]Entry

// Model is the ranked, size-bounded view of a collection used to render a report.
type Model struct {
	// Displayed holds the files shown individually.
	Displayed Collection `json:"displayed" yaml:"displayed"`
	// DisplayedOrder lists the keys of Displayed in ranked order.
	DisplayedOrder []string `json:"displayed_order" yaml:"displayed_order"`
	// Elided aggregates every file that did not fit.
	Elided      Entry `json:"elided" yaml:"elided"`
	ElidedCount int   `json:"elided_count" yaml:"elided_count"`
	// Total aggregates Displayed and Elided.
	Total Entry `json:"total" yaml:"total"`
}
