package parser

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a coverage source does not exist.
	ErrNotFound = errors.New("coverage file not found")

	// ErrEmptyData signals a json-summary report with no entries. It is not a
	// failure: callers should produce no output at all.
	ErrEmptyData = errors.New("coverage data is empty")
)

// FormatError describes coverage data that could not be parsed or validated.
type FormatError struct {
	// Path is the coverage source, if known.
	Path string
	// Key is the top-level file key of a json-summary report.
	Key string
	// Field is the dotted location inside the entry, e.g. "lines.pct".
	Field string
	// Line is the 1-based line number in an LCOV report.
	Line int
	// Reason says what was wrong.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("coverage data had invalid formatting")
	if e.Path != "" {
		fmt.Fprintf(&b, " at path '%s'", e.Path)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " in entry %q", e.Key)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %q", e.Field)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d", e.Line)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// withPath sets the source path on a FormatError, or wraps any other error in one.
func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Path = path
		return fe
	}
	return &FormatError{Path: path, Reason: err.Error(), Err: err}
}

func notFound(path string) error {
	return fmt.Errorf("couldn't find coverage file at path '%s': %w", path, ErrNotFound)
}
