package common

import (
	"path/filepath"
	"strings"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// Ext returns the lower-cased file extension of path, including the dot.
// Returns empty string if path has no extension.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// HasExt reports whether path ends with one of the given extensions.
// Comparison is case-insensitive.
func HasExt(path string, exts ...string) bool {
	ext := Ext(path)
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}

	return false
}
