// Package exporter writes match records as CSV files and Excel workbooks.
//
// WriteMatchesCSV and WriteMatchesXLSX stream a record set to any io.Writer in
// a given column layout; HTTP downloads use them directly. CSVWriter writes
// files into the exports directory, optionally with a UTF-8 byte order mark
// for Excel, and WriteBundle produces the filtered, full and workbook exports
// in one call.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, cfg.Exports.BOMPrefix, logger)
//	files, err := writer.WriteBundle(ctx, exporter.Bundle{
//		Columns:  table.Columns,
//		Filtered: filtered,
//		Full:     table.Records,
//	}, exporter.FileNamesFrom(cfg.Exports))
package exporter
