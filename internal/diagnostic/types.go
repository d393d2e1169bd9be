package diagnostic

import (
	"fmt"
	"strings"

	"docgen-converter/internal/common"
	"docgen-converter/internal/errors"
)

// ErrDiagnostics marks the error returned by Diagnostics.Error.
var ErrDiagnostics = errors.New("diagnostics contain errors")

// Diagnostic codes.
const (
	CodeNoTemplateContent  = "no_template_content"
	CodeUnmappedMergeField = "unmapped_merge_field"
	CodeAmbiguousField     = "ambiguous_field"
	CodeFuzzyMatch         = "fuzzy_match"
	CodeMissingParameter   = "missing_parameter"
	CodeMismatchedBlockEnd = "mismatched_block_end"
	CodeUnexpectedBlockEnd = "unexpected_block_end"
	CodeUnexpectedElse     = "unexpected_else"
	CodeUnclosedBlock      = "unclosed_block"
	CodeUnhandledControl   = "unhandled_control_tag"
	CodeUnknownElement     = "unknown_element"
	CodeInvalidMapping     = "invalid_mapping"
	CodeInvalidBoxPath     = "invalid_box_path"
	CodeDuplicateSource    = "duplicate_source_path"
	CodeLenientSQL         = "lenient_sql"
)

// issueTypes are the report titles for each code.
var issueTypes = map[string]string{
	CodeNoTemplateContent:  "No Template Content",
	CodeUnmappedMergeField: "Unmapped Merge Field",
	CodeAmbiguousField:     "Ambiguous Merge Field",
	CodeFuzzyMatch:         "Fuzzy Match",
	CodeMissingParameter:   "Missing Parameter",
	CodeMismatchedBlockEnd: "Mismatched Block End",
	CodeUnexpectedBlockEnd: "Unexpected Block End",
	CodeUnexpectedElse:     "Unexpected Else",
	CodeUnclosedBlock:      "Unclosed Block",
	CodeUnhandledControl:   "Unhandled Control Tag",
	CodeUnknownElement:     "Unknown Element",
	CodeInvalidMapping:     "Invalid Mapping",
	CodeInvalidBoxPath:     "Invalid Box Path",
	CodeDuplicateSource:    "Duplicate Source Path",
	CodeLenientSQL:         "Lenient SQL Read",
}

// IssueType returns the human-readable issue title for a code.
func IssueType(code string) string {
	if t, ok := issueTypes[code]; ok {
		return t
	}

	return code
}

// Diagnostics holds all diagnostic information from a conversion.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// FieldTag is the original Conga tag this relates to (if any).
	FieldTag string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add appends a diagnostic to the list matching its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, fieldTag string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, FieldTag: fieldTag})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, fieldTag string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, FieldTag: fieldTag})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, fieldTag string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, FieldTag: fieldTag})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
	d.Infos = append(d.Infos, other.Infos...)
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Len returns the total number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// All returns errors, then warnings, then infos.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, d.Len())
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)

	return append(all, d.Infos...)
}

// ByCode returns every diagnostic carrying the given code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Code == code {
			out = append(out, diag)
		}
	}

	return out
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	var parts []string
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.Mark(errors.New(strings.Join(parts, "; ")), ErrDiagnostics)
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if d.FieldTag != "" {
		msg = d.FieldTag + ": " + msg
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean: " + strings.Join(d.Suggestions, ", ") + ")"
	}

	return msg
}
