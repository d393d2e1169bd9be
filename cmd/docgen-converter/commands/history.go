package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newHistoryCmd(st *state) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := st.requireStore()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			if len(runs) == 0 {
				pterm.Info.WithWriter(w).Println("No runs recorded")

				return nil
			}

			rows := pterm.TableData{{"Run", "Template", "Started", "Mapped", "Unmapped", "Errors"}}
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.Template,
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					strconv.Itoa(r.Mapped),
					strconv.Itoa(r.Unmapped),
					strconv.Itoa(r.Errors),
				})
			}

			return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(rows).Render()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the report of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := st.requireStore()
			if err != nil {
				return err
			}
			defer db.Close()

			run, err := db.GetRun(args[0])
			if err != nil {
				return err
			}

			pterm.Fprintln(cmd.OutOrStdout(), run.ReportJSON)

			return nil
		},
	}

	cmd.AddCommand(show)

	return cmd
}
