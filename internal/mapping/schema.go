package mapping

import (
	"maps"
	"slices"
	"strings"
)

// SchemaMapping represents the root of a schema mapping file.
type SchemaMapping struct {
	// DirectMappings pins Conga tags to Box field paths.
	DirectMappings map[string]string `json:"direct_mappings" yaml:"direct_mappings"`

	// TypeRules maps a query-context data type to a Box formatting rule.
	TypeRules map[string]string `json:"type_rules" yaml:"type_rules"`

	// NestedPaths holds field mappings that apply inside repeating sections.
	NestedPaths map[string]NestedPath `json:"nested_paths" yaml:"nested_paths"`
}

// NestedPath maps the fields of one repeating section.
type NestedPath struct {
	// SourcePath is the Conga control tag that opens the section,
	// e.g. "TableStart:LineItems".
	SourcePath string `json:"source_path" yaml:"source_path"`

	// Fields pins Conga tags used inside the section to Box paths.
	Fields map[string]string `json:"fields" yaml:"fields"`
}

// New returns an empty schema mapping.
func New() *SchemaMapping {
	return &SchemaMapping{
		DirectMappings: map[string]string{},
		TypeRules:      map[string]string{},
		NestedPaths:    map[string]NestedPath{},
	}
}

// NormalizeTag wraps a bare name in braces and trims whitespace inside them.
// "Name", " {{ Name }} " and "{{Name}}" all become "{{Name}}".
func NormalizeTag(tag string) string {
	return "{{" + Unwrap(tag) + "}}"
}

// Unwrap strips the surrounding braces of a tag and trims whitespace.
func Unwrap(tag string) string {
	s := strings.TrimSpace(tag)
	if IsWrapped(s) {
		s = s[2 : len(s)-2]
	}

	return strings.TrimSpace(s)
}

// IsWrapped reports whether s is already a {{...}} tag.
func IsWrapped(s string) bool {
	return len(s) >= 4 && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}")
}

// Direct returns the Box target pinned for a Conga tag.
func (sm *SchemaMapping) Direct(tag string) (string, bool) {
	if sm == nil {
		return "", false
	}

	target, ok := sm.DirectMappings[NormalizeTag(tag)]

	return target, ok
}

// TypeRule returns the formatting rule for a data type. Lookup is
// case-insensitive.
func (sm *SchemaMapping) TypeRule(dataType string) (string, bool) {
	if sm == nil || dataType == "" {
		return "", false
	}

	if rule, ok := sm.TypeRules[dataType]; ok {
		return rule, true
	}

	for _, k := range slices.Sorted(maps.Keys(sm.TypeRules)) {
		if strings.EqualFold(k, dataType) {
			return sm.TypeRules[k], true
		}
	}

	return "", false
}

// Nested returns the nested path whose source opens the block named param.
// A source path matches when it is "TableStart:<param>" or just "<param>",
// compared case-insensitively. Entries are checked in key order.
func (sm *SchemaMapping) Nested(param string) (string, NestedPath, bool) {
	if sm == nil || param == "" {
		return "", NestedPath{}, false
	}

	for _, key := range slices.Sorted(maps.Keys(sm.NestedPaths)) {
		np := sm.NestedPaths[key]
		if strings.EqualFold(np.BlockName(), param) {
			return key, np, true
		}
	}

	return "", NestedPath{}, false
}

// BlockName returns the parameter of the section's opening tag.
func (np NestedPath) BlockName() string {
	s := Unwrap(np.SourcePath)
	if _, after, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(after)
	}

	return s
}

// Field returns the Box target for a Conga tag inside the section.
func (np NestedPath) Field(tag string) (string, bool) {
	target, ok := np.Fields[NormalizeTag(tag)]

	return target, ok
}

// Tags returns every Conga tag the mapping knows about, direct and nested,
// sorted and without duplicates.
func (sm *SchemaMapping) Tags() []string {
	if sm == nil {
		return nil
	}

	seen := make(map[string]struct{})

	for tag := range sm.DirectMappings {
		seen[tag] = struct{}{}
	}

	for _, np := range sm.NestedPaths {
		for tag := range np.Fields {
			seen[tag] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(seen))
}

// Clone returns a deep copy of the mapping. A nil mapping clones to an
// empty one.
func (sm *SchemaMapping) Clone() *SchemaMapping {
	out := New()
	if sm == nil {
		return out
	}

	maps.Copy(out.DirectMappings, sm.DirectMappings)
	maps.Copy(out.TypeRules, sm.TypeRules)

	for key, np := range sm.NestedPaths {
		out.NestedPaths[key] = NestedPath{SourcePath: np.SourcePath, Fields: maps.Clone(np.Fields)}
	}

	return out
}

// normalize rewrites keys to canonical {{Name}} form and fills nil maps.
func (sm *SchemaMapping) normalize() {
	if sm.DirectMappings == nil {
		sm.DirectMappings = map[string]string{}
	}

	if sm.TypeRules == nil {
		sm.TypeRules = map[string]string{}
	}

	if sm.NestedPaths == nil {
		sm.NestedPaths = map[string]NestedPath{}
	}

	sm.DirectMappings = normalizeKeys(sm.DirectMappings)

	for key, np := range sm.NestedPaths {
		np.Fields = normalizeKeys(np.Fields)
		sm.NestedPaths[key] = np
	}
}

func normalizeKeys(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		out[NormalizeTag(k)] = v
	}

	return out
}
