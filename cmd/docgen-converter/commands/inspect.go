package commands

import (
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"docgen-converter/internal/template"
)

func newInspectCmd(_ *state) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "inspect <template.docx>",
		Short: "List the tags of a Conga template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := template.ReadDocx(args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if dump {
				spew.Fdump(w, doc.Elements())

				return nil
			}

			rows := pterm.TableData{{"#", "Kind", "Tag", "Field / Type", "Parameter"}}

			for i, el := range doc.Elements() {
				if !el.IsTag() {
					continue
				}

				name := el.FieldName
				if el.Kind == template.KindControlTag {
					name = el.ControlType
				}

				rows = append(rows, []string{strconv.Itoa(i), el.Kind.String(), el.OriginalTag, name, el.Parameter})
			}

			if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render(); err != nil {
				return err
			}

			c := template.Count(doc.Elements())
			pterm.Info.WithWriter(w).Printfln("%d paragraphs, %d tables: %d merge fields, %d control tags, %d text segments",
				len(doc.Paragraphs), doc.Tables, c.MergeFields, c.ControlTags, c.Text)

			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the raw element structs")

	return cmd
}
