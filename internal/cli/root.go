package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"asiacup/internal/config"
	"asiacup/internal/infrastructure"
	"asiacup/pkg/contracts"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	DataPath   string
	Format     string // "json" | "text"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the asiacup CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "asiacup",
		Short: "Asia Cup cricket analytics",
		Long: `Filter and aggregate the Asia Cup match dataset.

Runs the dashboard service or answers the same questions from the terminal.`,
		Version:       contracts.GetFullVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DataPath, "data", "", "dataset file (.csv or .xlsx), overrides the config")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// loadConfig loads the configuration and applies the global overrides.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigFile)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.DataPath != "" {
		cfg.Dataset.Path = o.DataPath
	}
	return cfg, nil
}

// commandLogger logs to stderr so that stdout stays parseable. Without
// --verbose only warnings and errors are shown.
func (o *RootOptions) commandLogger(cfg config.LoggingConfig, stderr io.Writer) *slog.Logger {
	cfg.Output = "console"
	if !o.Verbose {
		cfg.Level = "warn"
	}
	logger, err := infrastructure.NewLogger(cfg, stderr)
	if err != nil {
		return slog.New(slog.NewJSONHandler(stderr, nil))
	}
	return logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
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
