package report

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const ellipsis = ".."

var markdownSpecials = "|()[]#*{}-+_!\\`"

// PrettyPathName shortens path to at most maxLength characters. Middle
// directories are elided first (keeping the first one), then the leading
// directory, and finally the base name is truncated.
func PrettyPathName(path string, maxLength int) (string, error) {
	if maxLength < 4 {
		return "", errors.New("maxLength must be at least 4")
	}
	if utf8.RuneCountInString(path) <= maxLength {
		return path, nil
	}

	sep := string(filepath.Separator)
	root := filepath.VolumeName(path)
	if strings.HasPrefix(path[len(root):], sep) {
		root += sep
	}

	dir, base := "", path
	if i := strings.LastIndex(path, sep); i >= 0 {
		dir, base = path[:i], path[i+1:]
	}

	dirs := strings.Split(strings.TrimPrefix(dir, root), sep)
	firstDir := dirs[0]
	dirs = dirs[1:]

	for len(dirs) > 0 {
		dirs = dirs[1:]
		middle := strings.Join(append([]string{ellipsis}, dirs...), sep)
		candidate := root + firstDir + sep + middle + sep + base
		if utf8.RuneCountInString(candidate) <= maxLength {
			return candidate, nil
		}
	}

	rootAndName := ellipsis + sep + base
	if utf8.RuneCountInString(rootAndName) <= maxLength {
		return rootAndName, nil
	}
	return string([]rune(rootAndName)[:maxLength-len(ellipsis)]) + ellipsis, nil
}

// EscapeMarkdown backslash-escapes the characters that would otherwise be
// read as markdown syntax inside a table cell or link text.
func EscapeMarkdown(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for _, r := range source {
		if strings.ContainsRune(markdownSpecials, r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
