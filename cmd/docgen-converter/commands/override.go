package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newOverrideCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Manage manual field overrides",
		Long: `Overrides pin a Conga tag to a Box field and win over every other rule.
They are kept in the store and applied by convert and suggest.`,
	}

	var note string

	set := &cobra.Command{
		Use:   "set <conga-tag> <box-field>",
		Short: "Pin a Conga tag to a Box field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := st.requireStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SetOverride(args[0], args[1], note); err != nil {
				return err
			}

			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Override saved: %s -> %s", args[0], args[1])

			return nil
		},
	}
	set.Flags().StringVar(&note, "note", "", "Free-form note stored with the override")

	rm := &cobra.Command{
		Use:     "rm <conga-tag>",
		Aliases: []string{"delete"},
		Short:   "Remove an override",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := st.requireStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.DeleteOverride(args[0]); err != nil {
				return err
			}

			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Override removed: %s", args[0])

			return nil
		},
	}

	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List overrides",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := st.requireStore()
			if err != nil {
				return err
			}
			defer db.Close()

			list, err := db.ListOverrides()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if len(list) == 0 {
				pterm.Info.WithWriter(w).Println("No overrides stored")

				return nil
			}

			rows := pterm.TableData{{"Conga tag", "Box field", "Note", "Updated"}}
			for _, o := range list {
				rows = append(rows, []string{o.CongaTag, o.BoxTag, o.Note, o.UpdatedAt.Format("2006-01-02 15:04")})
			}

			return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render()
		},
	}

	cmd.AddCommand(set, rm, ls)

	return cmd
}
