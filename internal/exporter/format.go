package exporter

import (
	"asiacup/pkg/contracts/domain"
)

// headerRow returns the CSV header for columns.
func headerRow(columns []domain.Column) []string {
	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = string(col)
	}
	return header
}

// formatRecord renders one record in column order. Measures use the shortest
// representation that parses back to the same value; missing values are
// empty cells.
func formatRecord(rec *domain.MatchRecord, columns []domain.Column) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = rec.Format(col)
	}
	return row
}

// cellValue returns the typed value of a column for a spreadsheet cell. A
// missing value is nil so the cell stays blank.
func cellValue(rec *domain.MatchRecord, col domain.Column) interface{} {
	return rec.Value(col)
}

func columnsOrDefault(columns []domain.Column) []domain.Column {
	if len(columns) == 0 {
		return domain.Columns
	}
	return columns
}
