package convert

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/match"
	"docgen-converter/internal/template"
)

// Candidate sources reported in fuzzy-match notes.
const (
	sourceSchema = "schema"
	sourceNested = "nested path"
	sourceCSV    = "csv"
	sourceSQL    = "sql"
)

// resolution is the outcome of resolving one merge field.
type resolution struct {
	method      Method
	boxField    string
	boxTag      string
	nestedKey   string
	confidence  float64
	notes       string
	dataType    string
	suggestions []string
}

func (c *Converter) convertMergeField(r *run, el template.Element) {
	tag := mapping.NormalizeTag(el.OriginalTag)
	res := c.resolve(r, el, tag)

	entry := Entry{
		Kind:        template.KindMergeField,
		CongaTag:    el.OriginalTag,
		BoxTag:      res.boxTag,
		BoxField:    res.boxField,
		NestedPath:  res.nestedKey,
		Method:      res.method,
		Confidence:  res.confidence,
		Notes:       res.notes,
		DataType:    res.dataType,
		Suggestions: res.suggestions,
	}

	if res.method.Resolved() {
		r.out.Metrics.Mapped++
		r.emit(res.boxTag)
	} else {
		r.out.Metrics.Unmapped++
		r.emit(el.OriginalTag)
	}

	c.log.Debugw("resolved merge field",
		"tag", el.OriginalTag,
		"method", res.method.String(),
		"box_tag", res.boxTag,
		"confidence", res.confidence,
	)

	r.out.Entries = append(r.out.Entries, entry)
}

// resolve applies the rules in priority order; the first hit wins.
func (c *Converter) resolve(r *run, el template.Element, tag string) resolution {
	if target, ok := c.overrides[tag]; ok {
		return c.resolved(MethodManualOverride, target, 1.0, "Stored manual override.")
	}

	for _, b := range r.blocks.nestedScope() {
		if target, ok := b.nested.Field(tag); ok {
			res := c.resolved(MethodNestedPath, target, 1.0,
				fmt.Sprintf("Nested path '%s' inside block '%s'.", b.nestedKey, b.param))
			res.boxTag = c.nestedTag(target)
			res.nestedKey = b.nestedKey

			return res
		}
	}

	if target, ok := c.schema.Direct(tag); ok {
		return c.resolved(MethodDirect, target, 1.0, "")
	}

	if row, ok := c.context.Lookup(tag); ok {
		res := c.resolved(MethodCSV, row.RelatedBoxField, 1.0,
			fmt.Sprintf("Data Type: %s, Source: %s", orNA(row.DataType), orNA(row.SourceTable)))
		res.dataType = row.DataType

		if rule, ok := c.schema.TypeRule(row.DataType); ok && rule != "" {
			res.notes += fmt.Sprintf(", Format: %s", rule)
		}

		return res
	}

	if field, ok := c.context.LookupSQL(el.FieldName); ok {
		return c.resolved(MethodSQL, field, 1.0, fmt.Sprintf("Selected field '%s'.", field))
	}

	candidates := match.Rank(tag, c.candidates(r))

	if c.config.AutoMatch {
		if candidates.IsAmbiguous(c.config.MinConfidence, c.config.AmbiguityThreshold) {
			return c.ambiguous(r, el, candidates)
		}

		if best := candidates.HighConfidence(c.config.MinConfidence, c.config.MinGap); best != nil {
			return c.fuzzy(r, el, best)
		}
	}

	return c.unmapped(r, el, candidates)
}

func (c *Converter) resolved(method Method, target string, confidence float64, notes string) resolution {
	return resolution{
		method:     method,
		boxField:   mapping.Unwrap(target),
		boxTag:     wrap(target),
		confidence: confidence,
		notes:      notes,
	}
}

// nestedTag renders a nested field. DocGen style addresses an array field
// relative to the loop variable of {{tablerow item in ...}}.
func (c *Converter) nestedTag(target string) string {
	if c.config.BlockStyle != StyleDocGen || mapping.IsWrapped(strings.TrimSpace(target)) {
		return wrap(target)
	}

	path, err := mapping.ParsePath(target)
	if err != nil || !path.InArray() {
		return wrap(target)
	}

	return "{{item." + path.Relative() + "}}"
}

// candidates lists every known name with the Box field it resolves to:
// direct mappings, nested fields of open blocks, CSV rows and SQL fields.
func (c *Converter) candidates(r *run) []match.Entry {
	var entries []match.Entry

	for _, b := range r.blocks.nestedScope() {
		for _, tag := range sortedKeys(b.nested.Fields) {
			entries = append(entries, match.Entry{Name: tag, Target: b.nested.Fields[tag], Source: sourceNested})
		}
	}

	if c.schema != nil {
		for _, tag := range sortedKeys(c.schema.DirectMappings) {
			entries = append(entries, match.Entry{Name: tag, Target: c.schema.DirectMappings[tag], Source: sourceSchema})
		}
	}

	for _, name := range c.context.Names() {
		if row, ok := c.context.Lookup(name); ok {
			entries = append(entries, match.Entry{Name: row.CongaField, Target: row.RelatedBoxField, Source: sourceCSV})
			continue
		}

		entries = append(entries, match.Entry{Name: name, Target: name, Source: sourceSQL})
	}

	return entries
}

func (c *Converter) fuzzy(r *run, el template.Element, best *match.Candidate) resolution {
	res := c.resolved(MethodFuzzy, best.Target, best.Score,
		fmt.Sprintf("Closest known field '%s' (%s), similarity %.2f.", best.Name, best.Source, best.Score))

	if best.Source == sourceNested {
		res.boxTag = c.nestedTag(best.Target)

		for _, b := range r.blocks.nestedScope() {
			if target, ok := b.nested.Field(best.Name); ok && target == best.Target {
				res.nestedKey = b.nestedKey

				break
			}
		}
	}

	if best.Source == sourceCSV {
		if row, ok := c.context.Lookup(best.Name); ok {
			res.dataType = row.DataType
		}
	}

	r.out.Metrics.Fuzzy++
	r.out.Diagnostics.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticInfo,
		Code:        diagnostic.CodeFuzzyMatch,
		Message:     fmt.Sprintf("Merge field '%s' was matched to '%s' by similarity (%.2f); review the mapping.", el.OriginalTag, best.Name, best.Score),
		FieldTag:    el.OriginalTag,
		Suggestions: []string{best.Name},
	})

	return res
}

func (c *Converter) ambiguous(r *run, el template.Element, candidates match.CandidateList) resolution {
	suggestions := candidates.AboveThreshold(match.SuggestionThreshold).Top(c.config.MaxSuggestions).Names()

	r.out.Metrics.Ambiguous++
	r.out.Diagnostics.Add(diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticWarning,
		Code:     diagnostic.CodeAmbiguousField,
		Message: fmt.Sprintf("Merge field '%s' matches several known fields equally well (%.2f vs %.2f).",
			el.OriginalTag, candidates[0].Score, candidates[1].Score),
		FieldTag:    el.OriginalTag,
		Suggestions: suggestions,
	})

	return resolution{
		method:      MethodAmbiguous,
		notes:       "Several candidates are too close to choose automatically.",
		suggestions: suggestions,
	}
}

func (c *Converter) unmapped(r *run, el template.Element, candidates match.CandidateList) resolution {
	suggestions := candidates.AboveThreshold(match.SuggestionThreshold).Top(c.config.MaxSuggestions).Names()

	r.out.Diagnostics.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticWarning,
		Code:        diagnostic.CodeUnmappedMergeField,
		Message:     fmt.Sprintf("Merge field '%s' could not be mapped using available rules.", el.OriginalTag),
		FieldTag:    el.OriginalTag,
		Suggestions: suggestions,
	})

	return resolution{method: MethodUnmapped, suggestions: suggestions}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
