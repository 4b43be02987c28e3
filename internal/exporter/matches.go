package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"asiacup/pkg/contracts/domain"
)

// SheetName is the worksheet used for workbook exports.
const SheetName = "matches"

// WriteMatchesCSV writes a header row and one row per record in the given
// column layout. A nil layout uses domain.Columns. Reading the output back
// with the dataset loader reproduces records.
func WriteMatchesCSV(w io.Writer, columns []domain.Column, records []domain.MatchRecord) error {
	columns = columnsOrDefault(columns)

	writer := csv.NewWriter(w)
	if err := writer.Write(headerRow(columns)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i := range records {
		if err := writer.Write(formatRecord(&records[i], columns)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMatchesXLSX writes the same layout as WriteMatchesCSV into a single
// "matches" worksheet.
func WriteMatchesXLSX(w io.Writer, columns []domain.Column, records []domain.MatchRecord) error {
	columns = columnsOrDefault(columns)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet writer: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = string(col)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i := range records {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = cellValue(&records[i], col)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteMatches writes records to name in the exports directory and returns
// the file path and size.
func (w *CSVWriter) WriteMatches(name string, columns []domain.Column, records []domain.MatchRecord) (string, int64, error) {
	columns = columnsOrDefault(columns)

	stream, err := w.CreateStreamWriter(name, headerRow(columns))
	if err != nil {
		return "", 0, err
	}
	for i := range records {
		if err := stream.WriteRecord(formatRecord(&records[i], columns)); err != nil {
			stream.Close()
			return "", 0, fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	size, err := stream.Close()
	if err != nil {
		return "", 0, err
	}

	w.logger.Info("matches exported",
		slog.String("path", stream.Path()),
		slog.Int("rows", len(records)),
		slog.Int64("bytes", size))
	return stream.Path(), size, nil
}
