package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"asiacup/internal/config"
	apierrors "asiacup/internal/errors"
	"asiacup/pkg/contracts/domain"
)

// Export kinds used in file listings and metrics.
const (
	KindFilteredCSV  = "filtered_csv"
	KindFullCSV      = "full_csv"
	KindFilteredXLSX = "filtered_xlsx"
)

// FileNames names the files of an export bundle.
type FileNames struct {
	FilteredCSV  string
	FullCSV      string
	FilteredXLSX string
}

// FileNamesFrom returns the configured export file names.
func FileNamesFrom(cfg config.ExportsConfig) FileNames {
	return FileNames{
		FilteredCSV:  cfg.FilteredName,
		FullCSV:      cfg.FullName,
		FilteredXLSX: config.FilteredXLSXName,
	}
}

// Bundle is the data of one export run.
type Bundle struct {
	Columns  []domain.Column
	Filtered []domain.MatchRecord
	Full     []domain.MatchRecord
}

// ExportedFile describes a file written by WriteBundle.
type ExportedFile struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Rows  int    `json:"rows"`
	Bytes int64  `json:"bytes"`
}

// WriteBundle writes the filtered CSV, the full CSV and the filtered workbook
// concurrently. The first failure cancels the remaining writes. Files are
// returned in that order.
func (w *CSVWriter) WriteBundle(ctx context.Context, b Bundle, names FileNames) ([]ExportedFile, error) {
	files := make([]ExportedFile, 3)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, size, err := w.WriteMatches(names.FilteredCSV, b.Columns, b.Filtered)
		if err != nil {
			return fmt.Errorf("filtered export: %w", err)
		}
		files[0] = ExportedFile{Kind: KindFilteredCSV, Path: path, Rows: len(b.Filtered), Bytes: size}
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, size, err := w.WriteMatches(names.FullCSV, b.Columns, b.Full)
		if err != nil {
			return fmt.Errorf("full export: %w", err)
		}
		files[1] = ExportedFile{Kind: KindFullCSV, Path: path, Rows: len(b.Full), Bytes: size}
		return nil
	})

	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path, size, err := w.writeWorkbook(names.FilteredXLSX, b.Columns, b.Filtered)
		if err != nil {
			return fmt.Errorf("workbook export: %w", err)
		}
		files[2] = ExportedFile{Kind: KindFilteredXLSX, Path: path, Rows: len(b.Filtered), Bytes: size}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apierrors.NewExportError("bundle export failed", err)
	}
	return files, nil
}

func (w *CSVWriter) writeWorkbook(name string, columns []domain.Column, records []domain.MatchRecord) (string, int64, error) {
	fullPath := w.resolvePath(name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	counter := &countingWriter{w: file}
	if err := WriteMatchesXLSX(counter, columns, records); err != nil {
		file.Close()
		return "", 0, err
	}
	if err := file.Close(); err != nil {
		return "", 0, err
	}

	w.logger.Info("workbook exported",
		slog.String("path", fullPath),
		slog.Int("rows", len(records)),
		slog.Int64("bytes", counter.n))
	return fullPath, counter.n, nil
}
