package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docgen-converter/internal/mapping"
	"docgen-converter/internal/pipeline"
	"docgen-converter/internal/report"
)

func newSuggestCmd(st *state) *cobra.Command {
	f := &convertFlags{}

	var out string

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Write a schema mapping extended with suggested fields",
		Long: `Run a conversion without writing the template and export the schema
mapping extended with what the run found: fuzzy matches, stored overrides
and the best suggestion for each unmapped field. Review the file and pass
it to convert with --mapping.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := f.convertConfig(st)
			if err != nil {
				return err
			}

			cc.StrictMode = false

			req := pipeline.Request{
				TemplatePath: f.template,
				ContextPath:  f.context,
				MappingPath:  f.mapping,
				Config:       cc,
			}

			if !f.noStore {
				db, err := st.openStore()
				if err != nil {
					return err
				}

				if db != nil {
					req.Overrides, err = db.Overrides()
					db.Close()

					if err != nil {
						return err
					}
				}
			}

			res, err := pipeline.Run(req, st.log)
			if err != nil {
				return err
			}

			suggested := report.SuggestMapping(res.Output, res.Schema, res.Context)
			if err := mapping.WriteFile(suggested, out); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			added := len(suggested.DirectMappings) - len(res.Schema.Clone().DirectMappings)

			pterm.Success.WithWriter(w).Printfln("Wrote %s with %d new direct mapping(s)", out, added)

			if diags := mapping.Validate(suggested); diags.HasErrors() {
				pterm.Warning.WithWriter(w).Printfln("The suggested mapping has %d validation error(s)", len(diags.Errors))
			}

			return nil
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "mapping.suggested.yaml", "Suggested mapping path (.yaml, .json)")

	return cmd
}
