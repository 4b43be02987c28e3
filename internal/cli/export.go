package cli

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"asiacup/internal/exporter"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &filterFlags{}
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered and full datasets to disk",
		Long: `Write the filtered CSV, the full CSV and the filtered workbook for the
selected matches into the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, flags, outDir)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: the configured exports dir)")
	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, flags *filterFlags, outDir string) error {
	req, err := flags.request(cmd)
	if err != nil {
		return err
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := opts.commandLogger(cfg.Logging, cmd.ErrOrStderr())

	ctx := cmd.Context()
	service, paths, err := openService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if outDir != "" {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid output directory", err)
		}
		paths.ExportsDir = abs
	}
	if err := os.MkdirAll(paths.ExportsDir, 0755); err != nil {
		return WrapExitError(ExitFailure, "failed to create output directory", err)
	}

	bundle, err := service.Bundle(ctx, req)
	if err != nil {
		return serviceError(err)
	}

	out := opts.formatter(cmd)
	out.VerboseLog("writing %d of %d rows to %s", len(bundle.Filtered), len(bundle.Full), paths.ExportsDir)

	writer := exporter.NewCSVWriter(paths, cfg.Exports.BOMPrefix, logger)
	files, err := writer.WriteBundle(ctx, bundle, exporter.FileNamesFrom(cfg.Exports))
	if err != nil {
		return WrapExitError(ExitFailure, "export failed", err)
	}
	service.RecordExport(ctx, files)

	if out.JSON() {
		return out.Success(files)
	}
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{f.Kind, f.Path, strconv.Itoa(f.Rows), strconv.FormatInt(f.Bytes, 10)}
	}
	out.Table("", []string{"Kind", "Path", "Rows", "Bytes"}, rows)
	return nil
}
