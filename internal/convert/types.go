package convert

import (
	"time"

	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/template"
)

// Entry is the conversion record of one template tag.
type Entry struct {
	// Kind is the element kind of the tag (merge field or control tag).
	Kind template.ElementKind
	// CongaTag is the original tag as found in the template.
	CongaTag string
	// BoxTag is the emitted Box tag, empty when the tag was left unconverted.
	BoxTag string
	// BoxField is the resolved Box field path without braces (merge fields only).
	BoxField string
	// NestedPath is the nested_paths key the field resolved through, set
	// for nested-path resolutions and fuzzy matches against nested fields.
	NestedPath string
	// Method records how the tag was converted.
	Method Method
	// Confidence is 1 for rule-based resolutions and the similarity score
	// for fuzzy matches. It is 0 for unresolved fields and control tags.
	Confidence float64
	// Notes explains the resolution.
	Notes string
	// DataType is the query-context data type of the field, if known.
	DataType string
	// Suggestions lists candidate Conga names for unresolved fields.
	Suggestions []string
}

// Metrics summarizes a conversion run. Unmapped counts every merge field
// left without a Box field, ambiguous ones included.
type Metrics struct {
	Elements     int
	MergeFields  int
	ControlTags  int
	TextSegments int
	Mapped       int
	Unmapped     int
	Ambiguous    int
	Fuzzy        int
	Duration     time.Duration
}

// Output is the result of a conversion.
type Output struct {
	// Template is the converted template as flat text: every piece joined
	// with a single space.
	Template string
	// Rendered holds the converted text of each input element, aligned
	// with the element slice passed to Convert.
	Rendered []string
	// Entries has one record per tag, in template order.
	Entries []Entry
	// Diagnostics contains all warnings and errors from the conversion.
	Diagnostics diagnostic.Diagnostics
	// Metrics summarizes the run.
	Metrics Metrics
}

// Unmapped returns the entries of merge fields that got no Box field.
func (o *Output) Unmapped() []Entry {
	var out []Entry

	for _, e := range o.Entries {
		if e.Kind == template.KindMergeField && !e.Method.Resolved() {
			out = append(out, e)
		}
	}

	return out
}
