package report

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"docgen-converter/internal/convert"
	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/querycontext"
	"docgen-converter/internal/template"
)

// Version is the report format version.
const Version = "1"

// defaultFieldType is the Box schema type of fields without a known data type.
const defaultFieldType = "string"

// Entry is the report record of one template tag.
type Entry struct {
	ElementType string   `json:"element_type"          yaml:"element_type"`
	CongaTag    string   `json:"conga_tag"             yaml:"conga_tag"`
	BoxTag      string   `json:"box_tag"               yaml:"box_tag"`
	BoxField    string   `json:"box_field,omitempty"   yaml:"box_field,omitempty"`
	Method      string   `json:"conversion_method"     yaml:"conversion_method"`
	Confidence  float64  `json:"confidence_score"      yaml:"confidence_score"`
	Notes       string   `json:"notes,omitempty"       yaml:"notes,omitempty"`
	DataType    string   `json:"data_type,omitempty"   yaml:"data_type,omitempty"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// ValidationError is one diagnostic in report form.
type ValidationError struct {
	FieldTag    string   `json:"field_tag"             yaml:"field_tag"`
	IssueType   string   `json:"issue_type"            yaml:"issue_type"`
	Code        string   `json:"code"                  yaml:"code"`
	Message     string   `json:"message"               yaml:"message"`
	Severity    string   `json:"severity"              yaml:"severity"`
	Suggestions []string `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// PerformanceMetrics summarizes the run.
type PerformanceMetrics struct {
	TotalElements    int     `json:"total_elements"     yaml:"total_elements"`
	MergeFields      int     `json:"merge_fields"       yaml:"merge_fields"`
	ControlTags      int     `json:"control_tags"       yaml:"control_tags"`
	TextSegments     int     `json:"text_segments"      yaml:"text_segments"`
	MappedFields     int     `json:"mapped_fields"      yaml:"mapped_fields"`
	UnmappedFields   int     `json:"unmapped_fields"    yaml:"unmapped_fields"`
	AmbiguousFields  int     `json:"ambiguous_fields"   yaml:"ambiguous_fields"`
	FuzzyMatches     int     `json:"fuzzy_matches"      yaml:"fuzzy_matches"`
	MappingRate      float64 `json:"mapping_rate"       yaml:"mapping_rate"`
	ProcessingTimeMS float64 `json:"processing_time_ms" yaml:"processing_time_ms"`
}

// BoxField is one field of the Box schema export.
type BoxField struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// BoxSchema lists the Box fields a converted template references.
type BoxSchema struct {
	SchemaVersion string     `json:"schema_version" yaml:"schema_version"`
	Fields        []BoxField `json:"fields"         yaml:"fields"`
}

// Document is the complete mapping report.
type Document struct {
	Version            string             `json:"version"                   yaml:"version"`
	RunID              string             `json:"run_id"                    yaml:"run_id"`
	GeneratedAt        time.Time          `json:"generated_at"              yaml:"generated_at"`
	Source             string             `json:"source,omitempty"          yaml:"source,omitempty"`
	ContextKind        string             `json:"context_kind"              yaml:"context_kind"`
	Template           string             `json:"converted_template"        yaml:"converted_template"`
	MappingReport      []Entry            `json:"mapping_report"            yaml:"mapping_report"`
	ValidationErrors   []ValidationError  `json:"validation_errors"         yaml:"validation_errors"`
	PerformanceMetrics PerformanceMetrics `json:"performance_metrics"       yaml:"performance_metrics"`
	BoxSchemaExport    BoxSchema          `json:"box_json_schema_export"    yaml:"box_json_schema_export"`
}

// Meta identifies a report. Zero fields are filled by Build.
type Meta struct {
	RunID       string
	Source      string
	GeneratedAt time.Time
}

// Build assembles the report of a conversion. qc may be nil.
func Build(out *convert.Output, qc *querycontext.Context, meta Meta) *Document {
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}

	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}

	doc := &Document{
		Version:          Version,
		RunID:            meta.RunID,
		GeneratedAt:      meta.GeneratedAt,
		Source:           meta.Source,
		ContextKind:      qc.Kind().String(),
		Template:         out.Template,
		MappingReport:    make([]Entry, 0, len(out.Entries)),
		ValidationErrors: []ValidationError{},
	}

	for _, e := range out.Entries {
		doc.MappingReport = append(doc.MappingReport, Entry{
			ElementType: e.Kind.String(),
			CongaTag:    e.CongaTag,
			BoxTag:      e.BoxTag,
			BoxField:    e.BoxField,
			Method:      e.Method.String(),
			Confidence:  e.Confidence,
			Notes:       e.Notes,
			DataType:    e.DataType,
			Suggestions: e.Suggestions,
		})
	}

	for _, d := range out.Diagnostics.All() {
		doc.ValidationErrors = append(doc.ValidationErrors, ValidationError{
			FieldTag:    d.FieldTag,
			IssueType:   diagnostic.IssueType(d.Code),
			Code:        d.Code,
			Message:     d.Message,
			Severity:    d.Severity.String(),
			Suggestions: d.Suggestions,
		})
	}

	m := out.Metrics
	doc.PerformanceMetrics = PerformanceMetrics{
		TotalElements:    m.Elements,
		MergeFields:      m.MergeFields,
		ControlTags:      m.ControlTags,
		TextSegments:     m.TextSegments,
		MappedFields:     m.Mapped,
		UnmappedFields:   m.Unmapped,
		AmbiguousFields:  m.Ambiguous,
		FuzzyMatches:     m.Fuzzy,
		ProcessingTimeMS: float64(m.Duration.Microseconds()) / 1000,
	}

	if m.MergeFields > 0 {
		doc.PerformanceMetrics.MappingRate = float64(m.Mapped) / float64(m.MergeFields)
	}

	doc.BoxSchemaExport = boxSchema(out.Entries, qc)

	return doc
}

// boxSchema lists the distinct resolved Box field paths sorted by name. The
// type comes from the entry, then the query context, then defaults to string.
func boxSchema(entries []convert.Entry, qc *querycontext.Context) BoxSchema {
	types := map[string]string{}

	for _, e := range entries {
		if e.Kind != template.KindMergeField || e.BoxField == "" || !e.Method.Resolved() {
			continue
		}

		// Expressions kept verbatim from the mapping are not schema fields.
		if _, err := mapping.ParsePath(e.BoxField); err != nil {
			continue
		}

		t := e.DataType
		if t == "" {
			t, _ = qc.DataType(e.BoxField)
		}

		if prev, ok := types[e.BoxField]; ok && (prev != defaultFieldType || t == "") {
			continue
		}

		if t == "" {
			t = defaultFieldType
		}

		types[e.BoxField] = t
	}

	schema := BoxSchema{SchemaVersion: Version, Fields: make([]BoxField, 0, len(types))}
	for name, t := range types {
		schema.Fields = append(schema.Fields, BoxField{Name: name, Type: t})
	}

	slices.SortFunc(schema.Fields, func(a, b BoxField) int {
		return strings.Compare(a.Name, b.Name)
	})

	return schema
}

// Errors returns the validation entries with severity error.
func (d *Document) Errors() []ValidationError {
	var out []ValidationError

	for _, v := range d.ValidationErrors {
		if v.Severity == diagnostic.DiagnosticError.String() {
			out = append(out, v)
		}
	}

	return out
}
