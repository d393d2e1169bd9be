package convert

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"go.uber.org/zap"

	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/mapping"
	"docgen-converter/internal/querycontext"
	"docgen-converter/internal/template"
)

// ErrStrict is returned by Convert in strict mode when the output has
// errors or unmapped fields. The output is returned alongside it.
var ErrStrict = errors.New("strict mode: conversion incomplete")

// Converter converts Conga template elements into Box DocGen tags.
type Converter struct {
	schema    *mapping.SchemaMapping
	context   *querycontext.Context
	overrides map[string]string
	config    Config
	log       *zap.SugaredLogger
}

// New creates a new Converter. schema and qc may be nil; a nil logger
// discards log output.
func New(
	schema *mapping.SchemaMapping,
	qc *querycontext.Context,
	config Config,
	logger *zap.SugaredLogger,
) *Converter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Converter{
		schema:    schema,
		context:   qc,
		overrides: map[string]string{},
		config:    config,
		log:       logger,
	}
}

// WithOverrides sets manual overrides (Conga tag to Box field) that win
// over every other rule. Keys are normalized to {{Name}} form.
func (c *Converter) WithOverrides(overrides map[string]string) *Converter {
	c.overrides = make(map[string]string, len(overrides))
	for tag, target := range overrides {
		c.overrides[mapping.NormalizeTag(tag)] = target
	}

	return c
}

// Overrides returns a copy of the manual overrides in use.
func (c *Converter) Overrides() map[string]string {
	return maps.Clone(c.overrides)
}

// run holds the state of one Convert call.
type run struct {
	out    *Output
	blocks blockStack
}

// Convert walks the elements once, in order, and returns the converted
// template, one entry per tag and the diagnostics. In strict mode the
// returned error wraps ErrStrict when anything is left unresolved.
func (c *Converter) Convert(elements []template.Element) (*Output, error) {
	start := time.Now()

	r := &run{out: &Output{
		Rendered: make([]string, 0, len(elements)),
		Entries:  []Entry{},
	}}

	if c.context != nil && c.context.SQL != nil {
		r.out.Diagnostics.Merge(c.context.SQL.Diagnostics)
	}

	if len(elements) == 0 {
		r.out.Diagnostics.AddWarning(diagnostic.CodeNoTemplateContent,
			"The Conga template appears to be empty or no elements were extracted.", "")
		c.log.Warnw("template has no content")

		return r.out, c.strictError(r.out)
	}

	for _, el := range elements {
		switch el.Kind {
		case template.KindText:
			r.out.Metrics.TextSegments++
			r.emit(el.Content)
		case template.KindMergeField:
			r.out.Metrics.MergeFields++
			c.convertMergeField(r, el)
		case template.KindControlTag:
			r.out.Metrics.ControlTags++
			c.convertControlTag(r, el)
		default:
			r.emit(el.OriginalTag)
			r.out.Entries = append(r.out.Entries, Entry{
				Kind:     el.Kind,
				CongaTag: el.OriginalTag,
				Method:   MethodUnknownElement,
				Notes:    fmt.Sprintf("This element type is not explicitly handled: %s", el.Kind),
			})
			r.out.Diagnostics.AddError(diagnostic.CodeUnknownElement,
				fmt.Sprintf("Element '%s' has an unhandled type: %s", el.OriginalTag, el.Kind), el.OriginalTag)
		}
	}

	for _, b := range r.blocks {
		r.out.Diagnostics.AddError(diagnostic.CodeUnclosedBlock,
			fmt.Sprintf("Block '%s' was opened (%s) but never closed with a corresponding %s.",
				b.param, b.kind.opener(), b.kind.closer()),
			fmt.Sprintf("(Unclosed Block: %s)", b.param))
	}

	r.out.Template = strings.Join(r.out.Rendered, " ")
	r.out.Metrics.Elements = len(elements)
	r.out.Metrics.Duration = time.Since(start)

	c.log.Infow("conversion finished",
		"elements", r.out.Metrics.Elements,
		"merge_fields", r.out.Metrics.MergeFields,
		"mapped", r.out.Metrics.Mapped,
		"unmapped", r.out.Metrics.Unmapped,
		"ambiguous", r.out.Metrics.Ambiguous,
		"errors", len(r.out.Diagnostics.Errors),
		"warnings", len(r.out.Diagnostics.Warnings),
		"duration", r.out.Metrics.Duration,
	)

	return r.out, c.strictError(r.out)
}

func (c *Converter) strictError(out *Output) error {
	if !c.config.StrictMode {
		return nil
	}

	if !out.Diagnostics.HasErrors() && out.Metrics.Unmapped == 0 {
		return nil
	}

	return errors.Wrapf(ErrStrict, "%d error(s), %d unmapped field(s)",
		len(out.Diagnostics.Errors), out.Metrics.Unmapped)
}

func (r *run) emit(s string) {
	r.out.Rendered = append(r.out.Rendered, s)
}

// wrap puts a resolved value in {{ }} unless it already is a tag.
func wrap(value string) string {
	if mapping.IsWrapped(strings.TrimSpace(value)) {
		return strings.TrimSpace(value)
	}

	return "{{" + strings.TrimSpace(value) + "}}"
}
