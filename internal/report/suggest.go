package report

import (
	"maps"
	"slices"

	"docgen-converter/internal/convert"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/querycontext"
	"docgen-converter/internal/template"
)

// SuggestMapping returns base extended with what a run learned: manual
// overrides and fuzzy matches become direct mappings, and unmapped or
// ambiguous fields are pinned to the target of their best suggestion.
// Matches against a nested field go into that nested path's fields
// instead. Tags base already maps are left alone. base and qc may be nil.
func SuggestMapping(out *convert.Output, base *mapping.SchemaMapping, qc *querycontext.Context) *mapping.SchemaMapping {
	sm := base.Clone()
	known := make(map[string]struct{})

	for _, tag := range base.Tags() {
		known[tag] = struct{}{}
	}

	for _, e := range out.Entries {
		if e.Kind != template.KindMergeField {
			continue
		}

		tag := mapping.NormalizeTag(e.CongaTag)
		if _, ok := known[tag]; ok {
			continue
		}

		var target, nestedKey string

		switch e.Method {
		case convert.MethodManualOverride:
			target = e.BoxField
		case convert.MethodFuzzy:
			target, nestedKey = e.BoxField, e.NestedPath
		case convert.MethodUnmapped, convert.MethodAmbiguous:
			for _, s := range e.Suggestions {
				if t, key, ok := suggestionTarget(s, base, qc); ok {
					target, nestedKey = t, key

					break
				}
			}
		}

		if target == "" {
			continue
		}

		if np, ok := sm.NestedPaths[nestedKey]; ok && nestedKey != "" {
			if np.Fields == nil {
				np.Fields = map[string]string{}
			}

			np.Fields[tag] = target
			sm.NestedPaths[nestedKey] = np
		} else {
			sm.DirectMappings[tag] = target
		}

		known[tag] = struct{}{}
	}

	return sm
}

// suggestionTarget resolves a suggested Conga name the way the converter
// builds its candidates. key names the nested path a nested field came from.
func suggestionTarget(name string, base *mapping.SchemaMapping, qc *querycontext.Context) (target, key string, ok bool) {
	if t, ok := base.Direct(name); ok {
		return mapping.Unwrap(t), "", true
	}

	if base != nil {
		for _, key := range slices.Sorted(maps.Keys(base.NestedPaths)) {
			if t, ok := base.NestedPaths[key].Field(name); ok {
				return mapping.Unwrap(t), key, true
			}
		}
	}

	if row, ok := qc.Lookup(name); ok {
		return row.RelatedBoxField, "", true
	}

	if field, ok := qc.LookupSQL(mapping.Unwrap(name)); ok {
		return field, "", true
	}

	return "", "", false
}
