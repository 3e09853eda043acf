package parser

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"

	"github.com/zjy-dev/covreport/internal/coverage"
)

// categoryBranchesTrue is an extra category newer istanbul versions write
// into the "total" entry only.
const categoryBranchesTrue = "branchesTrue"

// unknownPct is what istanbul writes for pct when there is nothing to cover.
const unknownPct = "Unknown"

var categoryNames = []string{"lines", "functions", "statements", "branches"}

var itemFields = []string{"total", "covered", "skipped", "pct"}

// ParseJSONSummary parses and validates an istanbul json-summary report.
//
// An empty object yields ErrEmptyData. Every entry must hold exactly the
// categories lines, functions, statements and branches, and every category
// exactly the numeric fields total, covered, skipped and pct. Violations are
// reported as a *FormatError naming the offending entry and field.
func ParseJSONSummary(data []byte) (coverage.Collection, error) {
	if !gjson.ValidBytes(data) {
		return nil, &FormatError{Reason: "invalid JSON"}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &FormatError{Reason: fmt.Sprintf("expected an object at the top level, got %s", describe(root))}
	}

	collection := make(coverage.Collection)
	var walkErr error
	root.ForEach(func(key, value gjson.Result) bool {
		entry, err := decodeEntry(key.Str, value)
		if err != nil {
			walkErr = err
			return false
		}
		collection[key.Str] = entry
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if len(collection) == 0 {
		return nil, ErrEmptyData
	}
	return collection, nil
}

// ParseJSONSummaryFile reads and parses the json-summary report at path.
func ParseJSONSummaryFile(fs afero.Fs, path string) (coverage.Collection, error) {
	content, err := readSource(fs, path)
	if err != nil {
		return nil, err
	}

	collection, err := ParseJSONSummary(content)
	if err != nil {
		if errors.Is(err, ErrEmptyData) {
			return nil, err
		}
		return nil, withPath(err, path)
	}
	return collection, nil
}

func decodeEntry(key string, value gjson.Result) (coverage.Entry, error) {
	if !value.IsObject() {
		return coverage.Entry{}, &FormatError{
			Key:    key,
			Reason: fmt.Sprintf("expected an object, got %s", describe(value)),
		}
	}

	allowed := categoryNames
	if key == coverage.TotalKey {
		allowed = append(slices.Clone(categoryNames), categoryBranchesTrue)
	}

	items := make(map[string]coverage.Item, len(allowed))
	var err error
	value.ForEach(func(name, raw gjson.Result) bool {
		category := name.Str
		switch {
		case !slices.Contains(allowed, category):
			err = &FormatError{Key: key, Field: category, Reason: "unexpected key"}
		case hasKey(items, category):
			err = &FormatError{Key: key, Field: category, Reason: "duplicate key"}
		default:
			var it coverage.Item
			it, err = decodeItem(key, category, raw)
			items[category] = it
		}
		return err == nil
	})
	if err != nil {
		return coverage.Entry{}, err
	}

	for _, category := range categoryNames {
		if !hasKey(items, category) {
			return coverage.Entry{}, &FormatError{Key: key, Field: category, Reason: "missing key"}
		}
	}

	return coverage.Entry{
		Lines:      items["lines"],
		Functions:  items["functions"],
		Statements: items["statements"],
		Branches:   items["branches"],
	}, nil
}

func decodeItem(key, category string, value gjson.Result) (coverage.Item, error) {
	if !value.IsObject() {
		return coverage.Item{}, &FormatError{
			Key:    key,
			Field:  category,
			Reason: fmt.Sprintf("expected an object, got %s", describe(value)),
		}
	}

	numbers := make(map[string]float64, len(itemFields))
	var err error
	value.ForEach(func(name, raw gjson.Result) bool {
		field := category + "." + name.Str
		switch {
		case !slices.Contains(itemFields, name.Str):
			err = &FormatError{Key: key, Field: field, Reason: "unexpected key"}
		case hasKey(numbers, name.Str):
			err = &FormatError{Key: key, Field: field, Reason: "duplicate key"}
		case raw.Type == gjson.Number:
			numbers[name.Str] = raw.Num
		case name.Str == "pct" && raw.Type == gjson.String && raw.Str == unknownPct:
			numbers[name.Str] = 100
		default:
			err = &FormatError{Key: key, Field: field, Reason: fmt.Sprintf("expected a number, got %s", describe(raw))}
		}
		return err == nil
	})
	if err != nil {
		return coverage.Item{}, err
	}

	for _, name := range itemFields {
		if !hasKey(numbers, name) {
			return coverage.Item{}, &FormatError{Key: key, Field: category + "." + name, Reason: "missing key"}
		}
	}

	return coverage.Item{
		Total:   numbers["total"],
		Covered: numbers["covered"],
		Skipped: numbers["skipped"],
		Pct:     numbers["pct"],
	}, nil
}

func hasKey[V any](m map[string]V, key string) bool {
	_, ok := m[key]
	return ok
}

// describe names the JSON type of r for error messages.
func describe(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	}
	return "unknown"
}
