package commands

import (
	"runtime"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X docgen-converter/cmd/docgen-converter/commands.Version=...".
var (
	Version = "dev"
	Commit  = "none"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			pterm.Fprintln(cmd.OutOrStdout(), "docgen-converter "+Version+" ("+Commit+") "+runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH)
		},
	}
}
