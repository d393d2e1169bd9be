// Package pipeline wires the readers, the converter, the writers and the
// reporter into one conversion run.
package pipeline

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docgen-converter/internal/common"
	"docgen-converter/internal/convert"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/querycontext"
	"docgen-converter/internal/report"
	"docgen-converter/internal/template"
)

// Request describes one conversion.
type Request struct {
	// TemplatePath is the Conga .docx template. Required.
	TemplatePath string
	// ContextPath is the .csv or .sql query context. Optional.
	ContextPath string
	// MappingPath is the .json/.yaml schema mapping. Optional.
	MappingPath string
	// OutputPath receives the converted template: plain text for .txt,
	// a .docx otherwise. Empty skips writing.
	OutputPath string
	// ReportPath receives the mapping report. Empty skips writing.
	ReportPath string
	// ReportFormat is used when ReportPath has no .json/.yaml extension.
	ReportFormat report.Format
	// Overrides are manual Conga tag to Box tag pins.
	Overrides map[string]string
	// Config tunes the converter.
	Config convert.Config
}

// Inputs are the loaded conversion inputs.
type Inputs struct {
	Template *template.Document
	Context  *querycontext.Context
	Schema   *mapping.SchemaMapping
}

// Result is the outcome of Run.
type Result struct {
	Inputs
	Output *convert.Output
	Report *report.Document
}

// DefaultOutputPath derives the converted template path from the input:
// quote.docx becomes quote_box.docx.
func DefaultOutputPath(templatePath string) string {
	ext := filepath.Ext(templatePath)
	if ext == "" {
		ext = ".docx"
	}

	return strings.TrimSuffix(templatePath, filepath.Ext(templatePath)) + "_box" + ext
}

// Load reads the template and the optional query context and mapping.
func Load(req Request, log *zap.SugaredLogger) (*Inputs, error) {
	if req.TemplatePath == "" {
		return nil, errors.WithHint(errors.New("no template given"), "pass --template path/to/template.docx")
	}

	doc, err := template.ReadDocx(req.TemplatePath)
	if err != nil {
		return nil, err
	}

	log.Infow("template loaded",
		"path", req.TemplatePath,
		"paragraphs", len(doc.Paragraphs),
		"tables", doc.Tables,
		"elements", len(doc.Elements()),
	)

	in := &Inputs{Template: doc}

	if req.ContextPath != "" {
		if in.Context, err = querycontext.Load(req.ContextPath); err != nil {
			return nil, err
		}

		log.Infow("query context loaded", "path", req.ContextPath, "kind", in.Context.Kind().String())
	}

	if req.MappingPath != "" {
		if in.Schema, err = mapping.LoadFile(req.MappingPath); err != nil {
			return nil, err
		}

		log.Infow("schema mapping loaded",
			"path", req.MappingPath,
			"direct", len(in.Schema.DirectMappings),
			"nested", len(in.Schema.NestedPaths),
		)
	}

	return in, nil
}

// Run loads the inputs, converts the template and writes the requested
// files. In strict mode the files are still written and the strict error
// is returned with the result.
func Run(req Request, log *zap.SugaredLogger) (*Result, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	in, err := Load(req, log)
	if err != nil {
		return nil, err
	}

	conv := convert.New(in.Schema, in.Context, req.Config, log).WithOverrides(req.Overrides)

	out, convErr := conv.Convert(in.Template.Elements())

	res := &Result{
		Inputs: *in,
		Output: out,
		Report: report.Build(out, in.Context, report.Meta{Source: filepath.Base(req.TemplatePath)}),
	}

	if req.OutputPath != "" {
		if err := WriteOutput(in.Template, out, req.OutputPath); err != nil {
			return res, err
		}

		log.Infow("converted template written", "path", req.OutputPath)
	}

	if req.ReportPath != "" {
		if err := res.Report.WriteFile(req.ReportPath, req.ReportFormat); err != nil {
			return res, err
		}

		log.Infow("report written", "path", req.ReportPath)
	}

	return res, convErr
}

// WriteOutput writes the converted template as text for .txt paths and as
// a rewritten copy of the source .docx otherwise.
func WriteOutput(doc *template.Document, out *convert.Output, path string) error {
	if common.HasExt(path, ".txt") {
		return template.WriteText(path, out.Template)
	}

	return doc.WriteFile(path, doc.RenderParagraphs(out.Rendered))
}
