package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pgdict/internal/config"
	"github.com/roach88/pgdict/internal/harness"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to a CUE config file; empty for defaults
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pgdict CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pgdict",
		Short: "pgdict - dictionary operations as PostgreSQL",
		Long:  "Translates dictionary operations over hstore, json and jsonb columns into PostgreSQL expressions.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "CUE config file")

	cmd.AddCommand(NewTranslateCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewMappingsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Logger returns the diagnostics logger: text on w, Debug when verbose.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig loads the --config file, or the defaults without one.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(o.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newHarness builds a harness over the configured translator.
func (o *RootOptions) newHarness(cmd *cobra.Command) (*harness.Harness, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	tr, reg, err := cfg.NewTranslator()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return harness.New(tr, reg, o.Logger(cmd.ErrOrStderr())), nil
}

func (o *RootOptions) output(cmd *cobra.Command) *Output {
	return &Output{
		JSON:    o.Format == "json",
		Writer:  cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: o.Verbose,
	}
}
