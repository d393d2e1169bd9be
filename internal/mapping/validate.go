package mapping

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"docgen-converter/internal/diagnostic"
)

// Validate checks a schema mapping for structural problems.
// Iteration follows sorted keys so diagnostics come out in a stable order.
func Validate(sm *SchemaMapping) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if sm == nil {
		res.AddError(diagnostic.CodeInvalidMapping, "schema mapping is nil", "")
		return res
	}

	for _, tag := range slices.Sorted(maps.Keys(sm.DirectMappings)) {
		validateTarget(res, "direct_mappings", tag, sm.DirectMappings[tag])
	}

	for _, dataType := range slices.Sorted(maps.Keys(sm.TypeRules)) {
		if strings.TrimSpace(sm.TypeRules[dataType]) == "" {
			res.AddWarning(diagnostic.CodeInvalidMapping,
				fmt.Sprintf("type rule for %q is empty and will be ignored", dataType), "")
		}
	}

	seenSources := map[string]string{}

	for _, key := range slices.Sorted(maps.Keys(sm.NestedPaths)) {
		np := sm.NestedPaths[key]
		where := "nested_paths." + key

		if strings.TrimSpace(np.SourcePath) == "" {
			res.AddError(diagnostic.CodeInvalidMapping,
				fmt.Sprintf("%s: source_path is required", where), "")
		} else {
			block := strings.ToLower(np.BlockName())
			if prev, ok := seenSources[block]; ok {
				res.AddError(diagnostic.CodeDuplicateSource,
					fmt.Sprintf("%s: source_path %q is already used by nested_paths.%s", where, np.SourcePath, prev), "")
			} else {
				seenSources[block] = key
			}
		}

		if len(np.Fields) == 0 {
			res.AddError(diagnostic.CodeInvalidMapping,
				fmt.Sprintf("%s: fields must contain at least one mapping", where), "")
		}

		for _, tag := range slices.Sorted(maps.Keys(np.Fields)) {
			validateTarget(res, where+".fields", tag, np.Fields[tag])
		}
	}

	return res
}

func validateTarget(res *diagnostic.Diagnostics, where, tag, target string) {
	if Unwrap(tag) == "" {
		res.AddError(diagnostic.CodeInvalidMapping, fmt.Sprintf("%s: empty Conga tag", where), tag)
		return
	}

	if strings.TrimSpace(target) == "" {
		res.AddError(diagnostic.CodeInvalidBoxPath, fmt.Sprintf("%s: empty Box target", where), tag)
		return
	}

	// A target already wrapped in braces is emitted as written, so it may
	// hold a DocGen expression such as {{ today() }}.
	if trimmed := strings.TrimSpace(target); IsWrapped(trimmed) {
		if Unwrap(trimmed) == "" {
			res.AddError(diagnostic.CodeInvalidBoxPath, fmt.Sprintf("%s: empty Box target", where), tag)
		}

		return
	}

	if _, err := ParsePath(target); err != nil {
		res.AddError(diagnostic.CodeInvalidBoxPath, fmt.Sprintf("%s: %v", where, err), tag)
	}
}
