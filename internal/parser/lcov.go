package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/zjy-dev/covreport/internal/coverage"
)

// LCOV report format, one record per source file:
//
//	TN:<test name>
//	SF:<source file>
//	FN:<line>,<function>
//	FNDA:<hits>,<function>
//	FNF:<functions found>
//	FNH:<functions hit>
//	BRDA:<line>,<block>,<branch>,<taken>
//	BRF:<branches found>
//	BRH:<branches hit>
//	DA:<line>,<hits>[,<checksum>]
//	LF:<lines found>
//	LH:<lines hit>
//	end_of_record

type lcovToken int

const (
	tokenTestName lcovToken = iota
	tokenSourceFile
	tokenFunction
	tokenFunctionHits
	tokenFunctionsFound
	tokenFunctionsHit
	tokenBranch
	tokenBranchesFound
	tokenBranchesHit
	tokenLine
	tokenLinesFound
	tokenLinesHit
	tokenEndOfRecord
)

const endOfRecord = "end_of_record"

// lookupToken maps an LCOV key to its token.
func lookupToken(key string) (lcovToken, bool) {
	switch key {
	case "TN":
		return tokenTestName, true
	case "SF":
		return tokenSourceFile, true
	case "FN":
		return tokenFunction, true
	case "FNDA":
		return tokenFunctionHits, true
	case "FNF":
		return tokenFunctionsFound, true
	case "FNH":
		return tokenFunctionsHit, true
	case "BRDA":
		return tokenBranch, true
	case "BRF":
		return tokenBranchesFound, true
	case "BRH":
		return tokenBranchesHit, true
	case "DA":
		return tokenLine, true
	case "LF":
		return tokenLinesFound, true
	case "LH":
		return tokenLinesHit, true
	case endOfRecord:
		return tokenEndOfRecord, true
	}
	return 0, false
}

// key returns the LCOV spelling of t.
func (t lcovToken) key() string {
	switch t {
	case tokenTestName:
		return "TN"
	case tokenSourceFile:
		return "SF"
	case tokenFunction:
		return "FN"
	case tokenFunctionHits:
		return "FNDA"
	case tokenFunctionsFound:
		return "FNF"
	case tokenFunctionsHit:
		return "FNH"
	case tokenBranch:
		return "BRDA"
	case tokenBranchesFound:
		return "BRF"
	case tokenBranchesHit:
		return "BRH"
	case tokenLine:
		return "DA"
	case tokenLinesFound:
		return "LF"
	case tokenLinesHit:
		return "LH"
	case tokenEndOfRecord:
		return endOfRecord
	}
	return "?"
}

// multiPart reports whether the token's value is a comma separated list.
// Single-part values keep their commas, so SF paths survive intact.
func (t lcovToken) multiPart() bool {
	switch t {
	case tokenFunction, tokenFunctionHits, tokenBranch, tokenLine:
		return true
	}
	return false
}

type lcovLine struct {
	token lcovToken
	parts []string
}

// splitLcovLine tokenizes one line. Lines without a recognized key are skipped.
func splitLcovLine(line string) (lcovLine, bool) {
	if strings.TrimSpace(line) == endOfRecord {
		return lcovLine{token: tokenEndOfRecord}, true
	}

	key, remainder, found := strings.Cut(line, ":")
	if !found {
		return lcovLine{}, false
	}
	token, ok := lookupToken(key)
	if !ok || token == tokenEndOfRecord {
		return lcovLine{}, false
	}
	if remainder == "" {
		return lcovLine{token: token}, true
	}

	parts := []string{remainder}
	if token.multiPart() {
		parts = strings.Split(remainder, ",")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return lcovLine{token: token, parts: parts}, true
}

// counterTokens are the counters a record needs, in the order they are checked.
var counterTokens = [...]lcovToken{
	tokenFunctionsFound,
	tokenFunctionsHit,
	tokenBranchesFound,
	tokenBranchesHit,
	tokenLinesFound,
	tokenLinesHit,
}

// record accumulates the fields of the record currently being read.
type record struct {
	file     string
	hasFile  bool
	counters map[lcovToken]float64
}

func newRecord() *record {
	return &record{counters: make(map[lcovToken]float64, len(counterTokens))}
}

// missing returns the first required key that has not been set.
func (r *record) missing() (string, bool) {
	if !r.hasFile {
		return tokenSourceFile.key(), true
	}
	for _, t := range counterTokens {
		if _, ok := r.counters[t]; !ok {
			return t.key(), true
		}
	}
	return "", false
}

func (r *record) entry() coverage.Entry {
	lines := coverage.NewItem(r.counters[tokenLinesFound], r.counters[tokenLinesHit])
	return coverage.Entry{
		Lines:      lines,
		Functions:  coverage.NewItem(r.counters[tokenFunctionsFound], r.counters[tokenFunctionsHit]),
		Branches:   coverage.NewItem(r.counters[tokenBranchesFound], r.counters[tokenBranchesHit]),
		Statements: lines,
	}
}

const (
	initialScanBuffer = 1024 * 1024
	maxScanBuffer     = 64 * 1024 * 1024
)

// ParseLcov reads an LCOV report into a collection. A record reaching
// end_of_record without all of SF, FNF, FNH, BRF, BRH, LF and LH is a
// *FormatError. A trailing record with no end_of_record is dropped.
func ParseLcov(r io.Reader) (coverage.Collection, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialScanBuffer), maxScanBuffer)

	collection := make(coverage.Collection)
	current := newRecord()
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line, ok := splitLcovLine(scanner.Text())
		if !ok {
			continue
		}

		switch line.token {
		case tokenSourceFile:
			current.hasFile = len(line.parts) > 0
			current.file = ""
			if current.hasFile {
				current.file = line.parts[0]
			}
		case tokenFunctionsFound, tokenFunctionsHit,
			tokenBranchesFound, tokenBranchesHit,
			tokenLinesFound, tokenLinesHit:
			if len(line.parts) == 0 {
				return nil, &FormatError{
					Line:   lineNumber,
					Field:  line.token.key(),
					Reason: "missing value",
				}
			}
			n, err := strconv.ParseFloat(line.parts[0], 64)
			if err != nil {
				return nil, &FormatError{
					Line:   lineNumber,
					Field:  line.token.key(),
					Reason: fmt.Sprintf("value %q is not a number", line.parts[0]),
					Err:    err,
				}
			}
			current.counters[line.token] = n
		case tokenEndOfRecord:
			if key, ok := current.missing(); ok {
				return nil, &FormatError{
					Line:   lineNumber,
					Field:  key,
					Reason: "record is incomplete",
				}
			}
			collection[current.file] = current.entry()
			current = newRecord()
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, &FormatError{Line: lineNumber + 1, Reason: "failed to read line", Err: err}
	}

	return collection, nil
}

// ParseLcovFile reads and parses the LCOV report at path.
func ParseLcovFile(fs afero.Fs, path string) (coverage.Collection, error) {
	content, err := readSource(fs, path)
	if err != nil {
		return nil, err
	}

	collection, err := ParseLcov(bytes.NewReader(content))
	if err != nil {
		return nil, withPath(err, path)
	}
	return collection, nil
}

// readSource reads a whole coverage source, reporting a missing file as ErrNotFound.
func readSource(fs afero.Fs, path string) ([]byte, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, &FormatError{Path: path, Reason: "failed to stat file", Err: err}
	}
	if !exists {
		return nil, notFound(path)
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &FormatError{Path: path, Reason: "failed to read file", Err: err}
	}
	return content, nil
}
