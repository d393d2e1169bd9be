// Package commands implements the docgen-converter cobra commands.
package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docgen-converter/internal/config"
	"docgen-converter/internal/errors"
	"docgen-converter/internal/logger"
	"docgen-converter/internal/store"
)

// state is shared by all commands of one invocation.
type state struct {
	configPath string
	verbosity  int
	logJSON    bool
	noColor    bool

	cfg *config.Config
	log *zap.SugaredLogger
}

// NewRoot builds the command tree.
func NewRoot() *cobra.Command {
	st := &state{log: zap.NewNop().Sugar()}

	root := &cobra.Command{
		Use:   "docgen-converter",
		Short: "Convert Conga templates into Box DocGen templates",
		Long: `docgen-converter rewrites the merge fields and control tags of a Conga
.docx template into Box DocGen tags and reports how every tag was resolved.

Fields are resolved in this order: stored overrides, nested paths of the
schema mapping, direct mappings, the query context (.csv or .sql), and
finally fuzzy matching against every known field name.

Examples:
  docgen-converter convert -t quote.docx -c context.csv -m mapping.json
  docgen-converter inspect quote.docx
  docgen-converter suggest -t quote.docx -m mapping.json -o mapping.suggested.yaml
  docgen-converter override set "{{Account_Name}}" account.name
  docgen-converter history --limit 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&st.configPath, "config", "", "Config file (default ./"+config.FileName+")")
	root.PersistentFlags().CountVarP(&st.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVar(&st.logJSON, "log-json", false, "Write logs as JSON")
	root.PersistentFlags().BoolVar(&st.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newConvertCmd(st),
		newInspectCmd(st),
		newSuggestCmd(st),
		newOverrideCmd(st),
		newHistoryCmd(st),
		newConfigCmd(st),
		newVersionCmd(),
	)

	return root
}

func (st *state) setup(cmd *cobra.Command) error {
	if st.noColor {
		pterm.DisableStyling()
	}

	cfg, used, err := config.Load(st.configPath)
	if err != nil {
		return err
	}

	st.cfg = cfg

	jsonLogs := cfg.Log.JSON || st.logJSON
	if err := logger.Initialize(jsonLogs, logger.VerbosityToLevel(st.verbosity, cfg.Log.Level)); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	st.log = logger.Logger.Named(cmd.Name())
	st.log.Debugw("configuration loaded", "file", used)

	return nil
}

// openStore opens the override and history database, or returns nil when
// the store is disabled.
func (st *state) openStore() (*store.Store, error) {
	if !st.cfg.Store.Enabled {
		return nil, nil
	}

	return store.Open(st.cfg.Store.Path, st.log.Named("store"))
}

// requireStore is openStore for commands that cannot work without it.
func (st *state) requireStore() (*store.Store, error) {
	s, err := st.openStore()
	if err != nil {
		return nil, err
	}

	if s == nil {
		return nil, errors.WithHint(errors.New("the store is disabled"),
			"set store.enabled = true in "+config.FileName+" or DOCGEN_STORE_ENABLED=true")
	}

	return s, nil
}

// PrintError prints err and its hints.
func PrintError(w io.Writer, err error) {
	pterm.Error.WithWriter(w).Println(err.Error())

	for _, hint := range errors.GetAllHints(err) {
		pterm.Fprintln(w, fmt.Sprintf("  hint: %s", hint))
	}
}
