package util

import (
	"os"
	"strings"
	"unicode"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SafeName keeps letters, digits, dots and underscores and turns everything
// else, spaces included, into underscores. "." and ".." never survive as-is.
func SafeName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(s))
	if s == "." || s == ".." {
		return strings.Repeat("_", len(s))
	}
	return s
}
