package mapping

import (
	"strings"

	"docgen-converter/internal/errors"
)

// FieldPath is a parsed Box field path.
type FieldPath struct {
	Segments []PathSegment
}

// PathSegment is one dot-separated part of a FieldPath.
type PathSegment struct {
	Name    string
	IsArray bool
}

// String renders the path back to its textual form.
func (p FieldPath) String() string {
	parts := make([]string, len(p.Segments))

	for i, s := range p.Segments {
		parts[i] = s.Name
		if s.IsArray {
			parts[i] += "[]"
		}
	}

	return strings.Join(parts, ".")
}

// InArray reports whether any segment iterates an array.
func (p FieldPath) InArray() bool {
	for _, s := range p.Segments {
		if s.IsArray {
			return true
		}
	}

	return false
}

// Relative returns the part of the path after the last array segment,
// e.g. "name" for "items[].name". Paths without arrays are returned whole.
func (p FieldPath) Relative() string {
	last := -1

	for i, s := range p.Segments {
		if s.IsArray {
			last = i
		}
	}

	return FieldPath{Segments: p.Segments[last+1:]}.String()
}

// ParsePath parses a Box field path. Surrounding braces are ignored.
// Supports: "field", "object.field", "items[]", "items[].name".
func ParsePath(path string) (FieldPath, error) {
	s := Unwrap(path)
	if s == "" {
		return FieldPath{}, errors.New("empty path")
	}

	var segments []PathSegment

	for part := range strings.SplitSeq(s, ".") {
		if part == "" {
			return FieldPath{}, errors.Newf("invalid path %q: empty segment", path)
		}

		name, isArray := strings.CutSuffix(part, "[]")
		if isArray && name == "" {
			return FieldPath{}, errors.Newf("invalid path %q: array without field name", path)
		}

		if !isValidIdent(name) {
			return FieldPath{}, errors.Newf("invalid path %q: invalid identifier %q", path, name)
		}

		segments = append(segments, PathSegment{Name: name, IsArray: isArray})
	}

	return FieldPath{Segments: segments}, nil
}

// isValidIdent checks that s starts with a letter or underscore and continues
// with letters, digits, underscores or hyphens.
func isValidIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case isLetter(r) || r == '_':
		case i > 0 && (isDigit(r) || r == '-'):
		default:
			return false
		}
	}

	return true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
