package diagnostic

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen-converter/internal/errors"
)

func TestDiagnosticsSeverityBuckets(t *testing.T) {
	var d Diagnostics

	d.AddError(CodeUnclosedBlock, "block never closed", "(Unclosed Block: Contacts)")
	d.AddWarning(CodeUnmappedMergeField, "no rule", "{{Legacy}}")
	d.AddInfo(CodeUnhandledControl, "kept verbatim", "{{Repeat:Rows}}")

	assert.Len(t, d.Errors, 1)
	assert.Len(t, d.Warnings, 1)
	assert.Len(t, d.Infos, 1)
	assert.Equal(t, 3, d.Len())
	assert.True(t, d.HasErrors())
	assert.False(t, d.IsValid())

	all := d.All()
	require.Len(t, all, 3)
	assert.Equal(t, DiagnosticError, all[0].Severity)
	assert.Equal(t, DiagnosticInfo, all[2].Severity)
}

func TestDiagnosticsError(t *testing.T) {
	var d Diagnostics
	require.NoError(t, d.Error())

	d.AddError(CodeMissingParameter, "TableStart tag is missing its parameter", "{{TableStart:}}")
	d.AddError(CodeUnexpectedBlockEnd, "no open block", "{{ENDIF}}")

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"{{TableStart:}}: [missing_parameter] TableStart tag is missing its parameter; "+
			"{{ENDIF}}: [unexpected_block_end] no open block",
		err.Error())
	assert.True(t, errors.Is(err, ErrDiagnostics))
	assert.Contains(t, fmt.Sprintf("%+v", err), "(*Diagnostics).Error")
}

func TestDiagnosticStringWithSuggestions(t *testing.T) {
	d := Diagnostic{
		Code:        CodeAmbiguousField,
		Message:     "several candidates",
		FieldTag:    "{{AcctName}}",
		Suggestions: []string{"account.name", "account.legal_name"},
	}

	assert.Equal(t,
		"{{AcctName}}: [ambiguous_field] several candidates (did you mean: account.name, account.legal_name)",
		d.String())
}

func TestMergeAndByCode(t *testing.T) {
	var a, b Diagnostics

	a.AddWarning(CodeUnmappedMergeField, "x", "{{A}}")
	b.AddWarning(CodeUnmappedMergeField, "y", "{{B}}")
	b.AddError(CodeUnclosedBlock, "z", "")

	a.Merge(b)

	assert.Len(t, a.ByCode(CodeUnmappedMergeField), 2)
	assert.Len(t, a.ByCode(CodeUnclosedBlock), 1)
}

func TestIssueTypeAndSeverityString(t *testing.T) {
	assert.Equal(t, "Unmapped Merge Field", IssueType(CodeUnmappedMergeField))
	assert.Equal(t, "custom_code", IssueType("custom_code"))
	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(42).String())
}
