package commands

import (
	"encoding/json"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"docgen-converter/internal/config"
	"docgen-converter/internal/errors"
)

func newConfigCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage docgen-converter configuration",
		Long: `Display and initialize the configuration.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (DOCGEN_* prefix, e.g. DOCGEN_OUTPUT_BLOCK_STYLE)
3. --config file, or ./` + config.FileName + `, or the user config directory
4. Default values`,
	}

	var force bool

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}

			if err := config.WriteDefaults(path, force); err != nil {
				return err
			}

			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %s", path)

			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	var format string

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				data []byte
				err  error
			)

			switch format {
			case "toml":
				data, err = st.cfg.Marshal()
			case "json":
				data, err = json.MarshalIndent(st.cfg, "", "  ")
			case "yaml":
				data, err = yaml.Marshal(st.cfg)
			default:
				return errors.WithHint(errors.Newf("unsupported format: %s", format), "use toml, json or yaml")
			}

			if err != nil {
				return errors.Wrapf(err, "failed to marshal config to %s", format)
			}

			pterm.Fprint(cmd.OutOrStdout(), string(data))

			return nil
		},
	}
	show.Flags().StringVar(&format, "format", "toml", "Output format: toml, json, yaml")

	cmd.AddCommand(initCmd, show)

	return cmd
}
