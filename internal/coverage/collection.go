package coverage

import (
	"maps"
	"slices"
)

// Merge unions collections. When a path appears in several collections the
// last one wins; categories are never merged across collections.
func Merge(collections ...Collection) Collection {
	merged := make(Collection)
	for _, c := range collections {
		maps.Copy(merged, c)
	}
	return merged
}

// Filter returns the listed files that are present in c, preserving the
// order of files and dropping duplicates.
func (c Collection) Filter(files []string) []string {
	kept := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if _, ok := c[f]; !ok || seen[f] {
			continue
		}
		seen[f] = true
		kept = append(kept, f)
	}
	return kept
}

// Files returns every source file in c in byte order, excluding TotalKey.
func (c Collection) Files() []string {
	files := make([]string, 0, len(c))
	for f := range c {
		if f == TotalKey {
			continue
		}
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Entries returns the entries for files, in order. Files missing from c are skipped.
func (c Collection) Entries(files []string) []Entry {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if e, ok := c[f]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}
