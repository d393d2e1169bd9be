package commands

import (
	"encoding/json"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docgen-converter/internal/convert"
	"docgen-converter/internal/diagnostic"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/pipeline"
	"docgen-converter/internal/report"
	"docgen-converter/internal/store"
)

type convertFlags struct {
	template    string
	context     string
	mapping     string
	out         string
	report      string
	blockStyle  string
	strict      bool
	noStore     bool
	noAutoMatch bool
	quiet       bool
}

func (f *convertFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Conga template (.docx)")
	cmd.Flags().StringVarP(&f.context, "context", "c", "", "Query context (.csv or .sql)")
	cmd.Flags().StringVarP(&f.mapping, "mapping", "m", "", "Schema mapping (.json, .yaml)")
	cmd.Flags().StringVar(&f.blockStyle, "block-style", "", "Block tag style: section or docgen (default from config)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail when any field stays unmapped or a block is broken")
	cmd.Flags().BoolVar(&f.noStore, "no-store", false, "Ignore stored overrides and do not record the run")
	cmd.Flags().BoolVar(&f.noAutoMatch, "no-auto-match", false, "Disable fuzzy matching")

	_ = cmd.MarkFlagRequired("template")
}

// convertConfig merges the flags into the configured converter settings.
func (f *convertFlags) convertConfig(st *state) (convert.Config, error) {
	cc := st.cfg.ConvertConfig()

	if f.blockStyle != "" {
		style, err := convert.ParseBlockStyle(f.blockStyle)
		if err != nil {
			return cc, err
		}

		cc.BlockStyle = style
	}

	if f.strict {
		cc.StrictMode = true
	}

	if f.noAutoMatch {
		cc.AutoMatch = false
	}

	return cc, nil
}

func newConvertCmd(st *state) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a Conga template",
		Long: `Convert a Conga template into a Box DocGen template.

The converted template is written next to the input as <name>_box.docx
unless --out is given; an --out path ending in .txt gets plain text.
The mapping report goes to --report (JSON or YAML by extension).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, st, f)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Converted template path (default <template>_box.docx)")
	cmd.Flags().StringVarP(&f.report, "report", "r", "", "Mapping report path (.json, .yaml)")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Skip the summary tables")

	return cmd
}

func runConvert(cmd *cobra.Command, st *state, f *convertFlags) error {
	cc, err := f.convertConfig(st)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		TemplatePath: f.template,
		ContextPath:  f.context,
		MappingPath:  f.mapping,
		OutputPath:   f.out,
		ReportPath:   f.report,
		ReportFormat: st.cfg.ReportFormat(),
		Config:       cc,
	}

	if req.OutputPath == "" {
		req.OutputPath = pipeline.DefaultOutputPath(f.template)
	}

	var db *store.Store

	if !f.noStore {
		if db, err = st.openStore(); err != nil {
			return err
		}
	}

	if db != nil {
		defer db.Close()

		if req.Overrides, err = db.Overrides(); err != nil {
			return err
		}
	}

	res, runErr := pipeline.Run(req, st.log)
	if res == nil {
		return runErr
	}

	w := cmd.OutOrStdout()

	if !f.quiet {
		if err := res.Report.Summary(w); err != nil {
			return err
		}
	}

	if db != nil {
		if err := recordRun(db, res.Report); err != nil {
			st.log.Warnw("run not recorded", "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	pterm.Success.WithWriter(w).Printfln("Converted %s -> %s", filepath.Base(f.template), req.OutputPath)

	if f.report != "" {
		pterm.Info.WithWriter(w).Printfln("Report written to %s", f.report)
	}

	if unmapped := res.Output.Unmapped(); len(unmapped) > 0 {
		pterm.Warning.WithWriter(w).Printfln("%d of %d merge fields need review",
			len(unmapped), res.Output.Metrics.MergeFields)
	}

	if n := len(res.Output.Diagnostics.ByCode(diagnostic.CodeLenientSQL)); n > 0 {
		pterm.Warning.WithWriter(w).Printfln("%d SQL statement(s) were read without the parser; check the selected fields", n)
	}

	return nil
}

func recordRun(db *store.Store, doc *report.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}

	_, err = db.RecordRun(store.Run{
		ID:         doc.RunID,
		Template:   doc.Source,
		StartedAt:  doc.GeneratedAt,
		Mapped:     doc.PerformanceMetrics.MappedFields,
		Unmapped:   doc.PerformanceMetrics.UnmappedFields,
		Errors:     len(doc.Errors()),
		ReportJSON: string(data),
	})

	return err
}
