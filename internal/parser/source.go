// Package parser reads LCOV and istanbul json-summary coverage reports into a
// coverage.Collection.
package parser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/zjy-dev/covreport/internal/coverage"
)

// Format is the serialization of a coverage source.
type Format string

const (
	FormatLcov        Format = "lcov"
	FormatJSONSummary Format = "json-summary"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatLcov, FormatJSONSummary:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown coverage format %q (expected %q or %q)", s, FormatLcov, FormatJSONSummary)
}

// InferFormat guesses the format from the file extension: .info and .lcov
// are LCOV, everything else is json-summary.
func InferFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".info", ".lcov":
		return FormatLcov
	}
	return FormatJSONSummary
}

// Source is one coverage report on disk.
type Source struct {
	Path string `mapstructure:"path" json:"path" yaml:"path"`
	Type Format `mapstructure:"type" json:"type,omitempty" yaml:"type,omitempty"`
}

// NewSource builds a Source, inferring the format when typ is empty.
func NewSource(path string, typ Format) Source {
	if typ == "" {
		typ = InferFormat(path)
	}
	return Source{Path: path, Type: typ}
}

// ParseSourceSpec parses "path" or "path:type", the latter only when the
// suffix is a known format so Windows drive letters stay intact.
func ParseSourceSpec(spec string) Source {
	if i := strings.LastIndex(spec, ":"); i > 0 {
		if f, err := ParseFormat(spec[i+1:]); err == nil {
			return NewSource(spec[:i], f)
		}
	}
	return NewSource(spec, "")
}

// ParseSource parses a single source with the parser matching its format.
func ParseSource(fs afero.Fs, src Source) (coverage.Collection, error) {
	typ := src.Type
	if typ == "" {
		typ = InferFormat(src.Path)
	}

	switch typ {
	case FormatLcov:
		return ParseLcovFile(fs, src.Path)
	case FormatJSONSummary:
		return ParseJSONSummaryFile(fs, src.Path)
	}
	return nil, fmt.Errorf("unknown coverage format %q for %s", typ, src.Path)
}

// Load parses every source and merges the results in list order, so a file
// present in several sources takes its entry from the last one.
//
// Sources are parsed concurrently; the error returned is the one from the
// earliest failing source in the list. Sources with no data are skipped, and
// if every source is empty Load returns ErrEmptyData.
func Load(ctx context.Context, fs afero.Fs, sources []Source) (coverage.Collection, error) {
	if len(sources) == 0 {
		return nil, errors.New("no coverage sources configured")
	}

	results := make([]coverage.Collection, len(sources))
	errs := make([]error, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = ParseSource(fs, src)
			return nil
		})
	}
	_ = g.Wait()

	nonEmpty := make([]coverage.Collection, 0, len(sources))
	for i := range sources {
		switch {
		case errs[i] == nil:
			nonEmpty = append(nonEmpty, results[i])
		case errors.Is(errs[i], ErrEmptyData):
			// nothing to merge
		default:
			return nil, errs[i]
		}
	}

	if len(nonEmpty) == 0 {
		return nil, ErrEmptyData
	}
	return coverage.Merge(nonEmpty...), nil
}
