package convert

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/querycontext"
	"docgen-converter/internal/template"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const schemaJSON = `{
  "direct_mappings": {
    "{{Opportunity_Name}}": "opportunity.name",
    "{{Account_Name}}": "account.name",
    "{{Today}}": "{{current_date}}"
  },
  "type_rules": {"currency": "format_currency"},
  "nested_paths": {
    "line_items": {
      "source_path": "TableStart:LineItems",
      "fields": {
        "{{Product_Name}}": "items[].name",
        "{{Quantity}}": "items[].quantity"
      }
    }
  }
}`

func testSchema(t *testing.T) *mapping.SchemaMapping {
	t.Helper()

	sm, err := mapping.Parse([]byte(schemaJSON))
	require.NoError(t, err)

	return sm
}

func testContext() *querycontext.Context {
	return &querycontext.Context{Rows: []querycontext.Row{
		{CongaField: "{{Amount}}", RelatedBoxField: "opportunity.amount", DataType: "currency", SourceTable: "Opportunity"},
		{CongaField: "{{Stage}}", RelatedBoxField: "opportunity.stage"},
		{CongaField: "{{Notes}}"},
	}}
}

func newConverter(t *testing.T, cfg Config, qc *querycontext.Context) *Converter {
	t.Helper()

	return New(testSchema(t), qc, cfg, zaptest.NewLogger(t).Sugar())
}

func entryFor(t *testing.T, out *Output, tag string) Entry {
	t.Helper()

	for _, e := range out.Entries {
		if e.CongaTag == tag {
			return e
		}
	}

	t.Fatalf("no entry for %s", tag)

	return Entry{}
}

func TestConvert_Empty(t *testing.T) {
	out, err := newConverter(t, DefaultConfig(), nil).Convert(nil)
	require.NoError(t, err)

	assert.Empty(t, out.Template)
	assert.Empty(t, out.Entries)
	require.Len(t, out.Diagnostics.Warnings, 1)
	assert.Equal(t, diagnostic.CodeNoTemplateContent, out.Diagnostics.Warnings[0].Code)
}

func TestConvert_ResolutionOrder(t *testing.T) {
	qc := testContext()
	elements := template.ScanText("Dear {{Opportunity_Name}}, {{Today}} {{Amount}} {{Stage}}")

	out, err := newConverter(t, DefaultConfig(), qc).Convert(elements)
	require.NoError(t, err)

	wantRendered := []string{"Dear ", "{{opportunity.name}}", ", ", "{{current_date}}", "{{opportunity.amount}}", "{{opportunity.stage}}"}
	if diff := cmp.Diff(wantRendered, out.Rendered); diff != "" {
		t.Errorf("Rendered mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Dear  {{opportunity.name}} ,  {{current_date}} {{opportunity.amount}} {{opportunity.stage}}", out.Template)

	wantEntries := []Entry{
		{Kind: template.KindMergeField, CongaTag: "{{Opportunity_Name}}", BoxTag: "{{opportunity.name}}", BoxField: "opportunity.name", Method: MethodDirect, Confidence: 1},
		{Kind: template.KindMergeField, CongaTag: "{{Today}}", BoxTag: "{{current_date}}", BoxField: "current_date", Method: MethodDirect, Confidence: 1},
		{
			Kind: template.KindMergeField, CongaTag: "{{Amount}}", BoxTag: "{{opportunity.amount}}", BoxField: "opportunity.amount",
			Method: MethodCSV, Confidence: 1, DataType: "currency",
			Notes: "Data Type: currency, Source: Opportunity, Format: format_currency",
		},
		{
			Kind: template.KindMergeField, CongaTag: "{{Stage}}", BoxTag: "{{opportunity.stage}}", BoxField: "opportunity.stage",
			Method: MethodCSV, Confidence: 1, Notes: "Data Type: N/A, Source: N/A",
		},
	}
	if diff := cmp.Diff(wantEntries, out.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 4, out.Metrics.Mapped)
	assert.Zero(t, out.Metrics.Unmapped)
	assert.Equal(t, 2, out.Metrics.TextSegments)
	assert.Equal(t, 6, out.Metrics.Elements)
	assert.Zero(t, out.Diagnostics.Len())
}

func TestConvert_DirectBeatsCSV(t *testing.T) {
	qc := &querycontext.Context{Rows: []querycontext.Row{
		{CongaField: "{{Account_Name}}", RelatedBoxField: "csv.account"},
	}}

	out, err := newConverter(t, DefaultConfig(), qc).Convert(template.ScanText("{{Account_Name}}"))
	require.NoError(t, err)

	assert.Equal(t, MethodDirect, out.Entries[0].Method)
	assert.Equal(t, "{{account.name}}", out.Template)
}

func TestConvert_ManualOverride(t *testing.T) {
	c := newConverter(t, DefaultConfig(), nil).WithOverrides(map[string]string{
		"Account_Name": "{{account.legal_name}}",
	})

	out, err := c.Convert(template.ScanText("{{ Account_Name }}"))
	require.NoError(t, err)

	e := out.Entries[0]
	assert.Equal(t, MethodManualOverride, e.Method)
	assert.Equal(t, "{{account.legal_name}}", e.BoxTag)
	assert.Equal(t, "account.legal_name", e.BoxField)
	assert.Equal(t, map[string]string{"{{Account_Name}}": "{{account.legal_name}}"}, c.Overrides())
}

func TestConvert_SQLContext(t *testing.T) {
	qc := &querycontext.Context{SQL: &querycontext.SQLContext{SelectedFields: []string{"AccountName", "CloseDate"}}}

	out, err := New(nil, qc, DefaultConfig(), nil).Convert(template.ScanText("{{account_name}} {{Close_Date}}"))
	require.NoError(t, err)

	assert.Equal(t, []string{"{{AccountName}}", "{{CloseDate}}"}, out.Rendered)

	for _, e := range out.Entries {
		assert.Equal(t, MethodSQL, e.Method)
	}
}

func TestConvert_SQLContextQualifiedAndLenient(t *testing.T) {
	sql, err := querycontext.ParseSQL([]byte(
		"SELECT Account.Name, Owner.Manager.Email FROM Opportunity WHERE Id = {pv0}"))
	require.NoError(t, err)

	out, err := New(nil, &querycontext.Context{SQL: sql}, DefaultConfig(), nil).
		Convert(template.ScanText("{{Account_Name}} {{Owner_Manager_Email}}"))
	require.NoError(t, err)

	assert.Equal(t, []string{"{{Account.Name}}", "{{Owner.Manager.Email}}"}, out.Rendered)
	assert.Len(t, out.Diagnostics.ByCode(diagnostic.CodeLenientSQL), 1)
}

func TestConvert_FuzzyMatch(t *testing.T) {
	out, err := newConverter(t, DefaultConfig(), nil).Convert(template.ScanText("{{Acount_Name}}"))
	require.NoError(t, err)

	e := out.Entries[0]
	assert.Equal(t, MethodFuzzy, e.Method)
	assert.Equal(t, "{{account.name}}", e.BoxTag)
	assert.InDelta(t, 1.0-1.0/11.0, e.Confidence, 0.001)
	assert.Contains(t, e.Notes, "{{Account_Name}}")

	assert.Equal(t, 1, out.Metrics.Fuzzy)
	assert.Equal(t, 1, out.Metrics.Mapped)

	fuzzy := out.Diagnostics.ByCode(diagnostic.CodeFuzzyMatch)
	require.Len(t, fuzzy, 1)
	assert.Equal(t, diagnostic.DiagnosticInfo, fuzzy[0].Severity)
	assert.Equal(t, []string{"{{Account_Name}}"}, fuzzy[0].Suggestions)
}

func TestConvert_AutoMatchDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoMatch = false

	out, err := newConverter(t, cfg, nil).Convert(template.ScanText("{{Acount_Name}}"))
	require.NoError(t, err)

	e := out.Entries[0]
	assert.Equal(t, MethodUnmapped, e.Method)
	assert.Equal(t, []string{"{{Account_Name}}"}, e.Suggestions)
	assert.Equal(t, "{{Acount_Name}}", out.Template)
}

func TestConvert_Ambiguous(t *testing.T) {
	sm, err := mapping.Parse([]byte(`{"direct_mappings": {
		"{{Contact_Name1}}": "contact.name_1",
		"{{Contact_Name2}}": "contact.name_2"
	}}`))
	require.NoError(t, err)

	out, err := New(sm, nil, DefaultConfig(), zaptest.NewLogger(t).Sugar()).Convert(template.ScanText("{{Contact_Name}}"))
	require.NoError(t, err)

	e := out.Entries[0]
	assert.Equal(t, MethodAmbiguous, e.Method)
	assert.Empty(t, e.BoxTag)
	assert.Equal(t, "{{Contact_Name}}", out.Template)

	assert.Equal(t, 1, out.Metrics.Ambiguous)
	assert.Equal(t, 1, out.Metrics.Unmapped)

	amb := out.Diagnostics.ByCode(diagnostic.CodeAmbiguousField)
	require.Len(t, amb, 1)
	assert.Equal(t, diagnostic.DiagnosticWarning, amb[0].Severity)
	assert.Equal(t, []string{"{{Contact_Name1}}", "{{Contact_Name2}}"}, amb[0].Suggestions)
}

func TestConvert_Unmapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSuggestions = 1

	out, err := newConverter(t, cfg, testContext()).Convert(template.ScanText("{{Amount_Total}} {{Xyz}}"))
	require.NoError(t, err)

	assert.Equal(t, "{{Amount_Total}} {{Xyz}}", out.Template)
	assert.Equal(t, 2, out.Metrics.Unmapped)

	unmapped := out.Diagnostics.ByCode(diagnostic.CodeUnmappedMergeField)
	require.Len(t, unmapped, 2)
	assert.Equal(t, "{{Amount_Total}}", unmapped[0].FieldTag)
	assert.Equal(t, []string{"{{Amount}}"}, unmapped[0].Suggestions)
	assert.Empty(t, unmapped[1].Suggestions)

	assert.Len(t, out.Unmapped(), 2)
}

func TestConvert_Blocks(t *testing.T) {
	text := "{{TableStart:LineItems}}{{Product_Name}}{{Quantity}}{{TableEnd:LineItems}}" +
		"{{IF:HasDiscount}}{{Account_Name}}{{ELSE}}none{{ENDIF}}"

	tests := []struct {
		name  string
		style BlockStyle
		want  []string
	}{
		{
			name:  "section",
			style: StyleSection,
			want: []string{
				"{{#LineItems}}", "{{items[].name}}", "{{items[].quantity}}", "{{/LineItems}}",
				"{{#HasDiscount}}", "{{account.name}}", "{{/HasDiscount}}{{^HasDiscount}}", "none", "{{/HasDiscount}}",
			},
		},
		{
			name:  "docgen",
			style: StyleDocGen,
			want: []string{
				"{{tablerow item in LineItems}}", "{{item.name}}", "{{item.quantity}}", "{{endtablerow}}",
				"{{if HasDiscount}}", "{{account.name}}", "{{else}}", "none", "{{endif}}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.BlockStyle = tt.style

			out, err := newConverter(t, cfg, nil).Convert(template.ScanText(text))
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, out.Rendered); diff != "" {
				t.Errorf("Rendered mismatch (-want +got):\n%s", diff)
			}

			assert.Zero(t, out.Diagnostics.Len(), out.Diagnostics.All())

			methods := make([]Method, 0, len(out.Entries))
			for _, e := range out.Entries {
				methods = append(methods, e.Method)
			}

			assert.Equal(t, []Method{
				MethodTableStart, MethodNestedPath, MethodNestedPath, MethodTableEnd,
				MethodIfStart, MethodDirect, MethodElse, MethodEndIf,
			}, methods)

			assert.Equal(t, "items[].name", entryFor(t, out, "{{Product_Name}}").BoxField)
		})
	}
}

func TestConvert_DocGenNestedScalarKeepsFullPath(t *testing.T) {
	sm, err := mapping.Parse([]byte(`{"nested_paths": {"lines": {
		"source_path": "TableStart:Lines",
		"fields": {"{{Sku}}": "lines[].sku", "{{Currency}}": "order.currency"}
	}}}`))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BlockStyle = StyleDocGen

	out, err := New(sm, nil, cfg, zaptest.NewLogger(t).Sugar()).
		Convert(template.ScanText("{{TableStart:Lines}}{{Sku}}{{Currency}}{{TableEnd:Lines}}"))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"{{tablerow item in Lines}}", "{{item.sku}}", "{{order.currency}}", "{{endtablerow}}",
	}, out.Rendered)
}

func TestConvert_NestedFieldOutsideBlock(t *testing.T) {
	out, err := newConverter(t, DefaultConfig(), nil).Convert(template.ScanText("{{Product_Name}}"))
	require.NoError(t, err)

	assert.Equal(t, MethodUnmapped, out.Entries[0].Method)
}

func TestConvert_BlockDiagnostics(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		severity diagnostic.DiagnosticSeverity
		code     string
		fieldTag string
		rendered []string
	}{
		{
			name:     "missing parameter",
			text:     "{{TableStart:}}",
			severity: diagnostic.DiagnosticError,
			code:     diagnostic.CodeMissingParameter,
			fieldTag: "{{TableStart:}}",
			rendered: []string{"{{TableStart:}}"},
		},
		{
			name:     "unexpected end",
			text:     "{{ENDIF}}",
			severity: diagnostic.DiagnosticError,
			code:     diagnostic.CodeUnexpectedBlockEnd,
			fieldTag: "{{ENDIF}}",
			rendered: []string{"{{ENDIF}}"},
		},
		{
			name:     "mismatched end",
			text:     "{{TableStart:A}}{{TableEnd:B}}",
			severity: diagnostic.DiagnosticWarning,
			code:     diagnostic.CodeMismatchedBlockEnd,
			fieldTag: "{{TableEnd:B}}",
			rendered: []string{"{{#A}}", "{{/A}}"},
		},
		{
			name:     "end of other kind",
			text:     "{{IF:A}}{{TableEnd}}",
			severity: diagnostic.DiagnosticWarning,
			code:     diagnostic.CodeMismatchedBlockEnd,
			fieldTag: "{{TableEnd}}",
			rendered: []string{"{{#A}}", "{{/A}}"},
		},
		{
			name:     "unclosed",
			text:     "{{IF:HasDiscount}}yes",
			severity: diagnostic.DiagnosticError,
			code:     diagnostic.CodeUnclosedBlock,
			fieldTag: "(Unclosed Block: HasDiscount)",
			rendered: []string{"{{#HasDiscount}}", "yes"},
		},
		{
			name:     "else outside if",
			text:     "{{TableStart:A}}{{ELSE}}{{TableEnd:A}}",
			severity: diagnostic.DiagnosticError,
			code:     diagnostic.CodeUnexpectedElse,
			fieldTag: "{{ELSE}}",
			rendered: []string{"{{#A}}", "{{ELSE}}", "{{/A}}"},
		},
		{
			name:     "unhandled control",
			text:     "{{DATE:Today}}",
			severity: diagnostic.DiagnosticInfo,
			code:     diagnostic.CodeUnhandledControl,
			fieldTag: "{{DATE:Today}}",
			rendered: []string{"{{DATE:Today}}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(nil, nil, DefaultConfig(), nil).Convert(template.ScanText(tt.text))
			require.NoError(t, err)

			assert.Equal(t, tt.rendered, out.Rendered)

			found := out.Diagnostics.ByCode(tt.code)
			require.Len(t, found, 1, out.Diagnostics.All())
			assert.Equal(t, tt.severity, found[0].Severity)
			assert.Equal(t, tt.fieldTag, found[0].FieldTag)
		})
	}
}

func TestConvert_ControlEntries(t *testing.T) {
	out, err := New(nil, nil, DefaultConfig(), nil).Convert(template.ScanText("{{TableStart:}}{{IF:A}}{{ENDIF}}{{DATE:x}}"))
	require.NoError(t, err)

	want := []Entry{
		{Kind: template.KindControlTag, CongaTag: "{{TableStart:}}", Method: MethodControlUnhandled},
		{Kind: template.KindControlTag, CongaTag: "{{IF:A}}", BoxTag: "{{#A}}", Method: MethodIfStart},
		{Kind: template.KindControlTag, CongaTag: "{{ENDIF}}", BoxTag: "{{/A}}", Method: MethodEndIf},
		{Kind: template.KindControlTag, CongaTag: "{{DATE:x}}", Method: MethodControlUnhandled},
	}

	if diff := cmp.Diff(want, out.Entries, cmpopts.IgnoreFields(Entry{}, "Notes")); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Missing parameter for TableStart tag.", out.Entries[0].Notes)
}

func TestConvert_StrictMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StrictMode = true

	t.Run("unmapped field fails", func(t *testing.T) {
		out, err := newConverter(t, cfg, nil).Convert(template.ScanText("{{Xyz}}"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStrict))
		assert.Contains(t, err.Error(), "1 unmapped field(s)")
		require.NotNil(t, out)
		assert.Equal(t, "{{Xyz}}", out.Template)
	})

	t.Run("block error fails", func(t *testing.T) {
		_, err := newConverter(t, cfg, nil).Convert(template.ScanText("{{ENDIF}}"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStrict))
	})

	t.Run("clean run passes", func(t *testing.T) {
		out, err := newConverter(t, cfg, nil).Convert(template.ScanText("{{Account_Name}}"))
		require.NoError(t, err)
		assert.Equal(t, "{{account.name}}", out.Template)
	})
}

func TestParseBlockStyle(t *testing.T) {
	for input, want := range map[string]BlockStyle{"": StyleSection, "Section": StyleSection, " docgen ": StyleDocGen} {
		got, err := ParseBlockStyle(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseBlockStyle("handlebars")
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))

	assert.Equal(t, "docgen", StyleDocGen.String())
	assert.Equal(t, "unknown", BlockStyle(9).String())
}

func TestMethod_String(t *testing.T) {
	assert.Equal(t, "Direct Mapping (Schema)", MethodDirect.String())
	assert.Equal(t, "Control Tag (Unhandled)", MethodControlUnhandled.String())
	assert.Equal(t, "Method(99)", Method(99).String())

	text, err := MethodCSV.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Query Context (CSV)", string(text))

	assert.True(t, MethodFuzzy.Resolved())
	assert.False(t, MethodAmbiguous.Resolved())
}
