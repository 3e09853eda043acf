package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/covreport/internal/coverage"
)

const singleRecord = `TN:
SF: some/file.ts
FN: 1, func1
FN: 5, func2
FN: 10, func3
FN: 15, func4
FNDA: 1, func1
FNDA: 3, func2
FNDA: 0, func3
FNDA: 0, func4
FNF: 4
FNH: 2
BRF: 8
BRH: 4
LH: 15
LF: 20
end_of_record`

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestParseLcov(t *testing.T) {
	t.Run("should parse a correctly formatted record", func(t *testing.T) {
		output, err := ParseLcov(strings.NewReader(singleRecord))
		require.NoError(t, err)

		lines := coverage.Item{Total: 20, Covered: 15, Skipped: 5, Pct: 75}
		assert.Equal(t, coverage.Collection{
			"some/file.ts": {
				Lines:      lines,
				Functions:  coverage.Item{Total: 4, Covered: 2, Skipped: 2, Pct: 50},
				Statements: lines,
				Branches:   coverage.Item{Total: 8, Covered: 4, Skipped: 4, Pct: 50},
			},
		}, output)
	})

	t.Run("should drop a trailing record with no end_of_record", func(t *testing.T) {
		input := strings.TrimSuffix(singleRecord, "end_of_record")
		output, err := ParseLcov(strings.NewReader(input))
		require.NoError(t, err)
		assert.Empty(t, output)
	})

	t.Run("should fail when FNF is missing", func(t *testing.T) {
		input := `TN:
SF: some/file.ts
FN: 1, func1
FNDA: 1, func1
FNH: 1
BRF: 8
BRH: 4
LH: 15
LF: 20
end_of_record`
		output, err := ParseLcov(strings.NewReader(input))
		assert.Nil(t, output)

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "FNF", fe.Field)
		assert.Equal(t, 10, fe.Line)
	})

	t.Run("should fail when SF is missing", func(t *testing.T) {
		input := "FNF:1\nFNH:1\nBRF:0\nBRH:0\nLF:1\nLH:1\nend_of_record\n"
		_, err := ParseLcov(strings.NewReader(input))

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "SF", fe.Field)
	})

	t.Run("should not emit earlier records when a later one is incomplete", func(t *testing.T) {
		input := singleRecord + "\nSF:other.ts\nLF:1\nend_of_record\n"
		output, err := ParseLcov(strings.NewReader(input))
		assert.Error(t, err)
		assert.Nil(t, output)
	})

	t.Run("should parse two records", func(t *testing.T) {
		input := `TN:
SF: some/file1.ts
FN: 1, func1
FNDA: 1, func1
FNH: 1
FNF: 1
BRF: 8
BRH: 4
LH: 15
LF: 20
end_of_record
SF: some/file2.ts
FN: 1, func1
FNDA: 1, func1
FN: 1, func2
FNDA: 1, func2
FNH: 1
FNF: 2
BRF: 8
BRH: 4
LH: 15
LF: 20
end_of_record`
		output, err := ParseLcov(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, output, 2)
		assert.Equal(t, coverage.Item{Total: 1, Covered: 1, Skipped: 0, Pct: 100}, output["some/file1.ts"].Functions)
		assert.Equal(t, coverage.Item{Total: 2, Covered: 1, Skipped: 1, Pct: 50}, output["some/file2.ts"].Functions)
	})

	t.Run("should not carry counters over to the next record", func(t *testing.T) {
		input := singleRecord + "\nSF:next.ts\nFNF:1\nFNH:1\nBRF:1\nBRH:1\nLF:1\nend_of_record\n"
		_, err := ParseLcov(strings.NewReader(input))

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "LH", fe.Field)
	})

	t.Run("should skip unknown keys and blank lines", func(t *testing.T) {
		input := "VER:2\n\nSF:a.ts\nXYZ:1,2\nFNF:2\nFNH:1\nBRF:2\nBRH:2\nLF:4\nLH:3\nDA:1,1\nBRDA:1,0,0,1\nend_of_record\n"
		output, err := ParseLcov(strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 75.0, output["a.ts"].Lines.Pct)
	})

	t.Run("should keep commas and colons in source paths", func(t *testing.T) {
		input := "SF:C:\\repo\\a,b.ts\nFNF:1\nFNH:1\nBRF:1\nBRH:1\nLF:1\nLH:1\nend_of_record\n"
		output, err := ParseLcov(strings.NewReader(input))
		require.NoError(t, err)
		assert.Contains(t, output, "C:\\repo\\a,b.ts")
	})

	t.Run("should accept CRLF line endings", func(t *testing.T) {
		input := strings.ReplaceAll(singleRecord, "\n", "\r\n")
		output, err := ParseLcov(strings.NewReader(input))
		require.NoError(t, err)
		assert.Contains(t, output, "some/file.ts")
	})

	t.Run("should reject a counter that is not a number", func(t *testing.T) {
		input := strings.Replace(singleRecord, "BRF: 8", "BRF: eight", 1)
		_, err := ParseLcov(strings.NewReader(input))

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "BRF", fe.Field)
	})

	t.Run("should let a repeated source file overwrite the earlier record", func(t *testing.T) {
		second := strings.Replace(singleRecord, "LH: 15", "LH: 20", 1)
		output, err := ParseLcov(strings.NewReader(singleRecord + "\n" + second))
		require.NoError(t, err)
		assert.Equal(t, 100.0, output["some/file.ts"].Lines.Pct)
	})
}

func TestParseLcovFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	t.Run("should report a missing file as not found", func(t *testing.T) {
		_, err := ParseLcovFile(fs, "coverage/lcov.info")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "coverage/lcov.info")
	})

	t.Run("should attach the path to format errors", func(t *testing.T) {
		writeFile(t, fs, "bad.info", "SF:a.ts\nend_of_record\n")
		_, err := ParseLcovFile(fs, "bad.info")

		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "bad.info", fe.Path)
		assert.Contains(t, err.Error(), "at path 'bad.info'")
	})

	t.Run("should parse a file from disk", func(t *testing.T) {
		writeFile(t, fs, "lcov.info", singleRecord)
		output, err := ParseLcovFile(fs, "lcov.info")
		require.NoError(t, err)
		assert.Len(t, output, 1)
	})
}
