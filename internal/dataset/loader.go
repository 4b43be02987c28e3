package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"asiacup/internal/analytics"
	apierrors "asiacup/internal/errors"
	"asiacup/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a loaded, read-only copy of the match dataset. Callers must not
// modify Records.
type Table struct {
	Source   string
	Columns  []domain.Column
	Records  []domain.MatchRecord
	Options  domain.FilterOptions
	LoadedAt time.Time
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Loader parses dataset files into Tables.
type Loader struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewLoader creates a Loader. A nil logger uses slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Loader{
		logger:   logger.With(slog.String("component", "dataset_loader")),
		validate: v,
	}
}

// Load reads a .csv or .xlsx file. Every failure is fatal for the file: the
// returned error is an *apierrors.AppError naming the row and column involved.
func (l *Loader) Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apierrors.NewStorageError(fmt.Sprintf("failed to read dataset %s", path), err).
			WithContext("path", path)
	}

	var table *Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = l.ReadXLSX(bytes.NewReader(data))
	default:
		table, err = l.ReadCSV(bytes.NewReader(data))
	}
	if err != nil {
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}

	table.Source = path
	l.logger.Info("dataset loaded",
		slog.String("path", path),
		slog.Int("rows", table.Len()),
		slog.Int("years", len(table.Options.Years)),
		slog.Int("teams", len(table.Options.Teams)))
	return table, nil
}

// ReadCSV parses a UTF-8 CSV with a header row. A leading byte order mark is
// ignored.
func (l *Loader) ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apierrors.NewParsingError("dataset is empty", nil)
	}
	if err != nil {
		return nil, apierrors.NewParsingError("failed to read header row", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], string(utf8BOM))
	}

	b, err := l.newBuilder(header)
	if err != nil {
		return nil, err
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			appErr := apierrors.NewParsingError("malformed csv row", err)
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				appErr.WithContext("row", parseErr.StartLine)
			}
			return nil, appErr
		}
		line, _ := reader.FieldPos(0)
		if err := b.add(line, row); err != nil {
			return nil, err
		}
	}

	return b.table(), nil
}

// ReadXLSX parses the first sheet of a workbook using the same header rules
// as ReadCSV.
func (l *Loader) ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewParsingError("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, apierrors.NewParsingError("dataset is empty", nil)
	}

	b, err := l.newBuilder(rows[0])
	if err != nil {
		return nil, err
	}

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// GetRows drops trailing empty cells.
		for len(row) < len(rows[0]) {
			row = append(row, "")
		}
		if err := b.add(i+2, row); err != nil {
			return nil, err
		}
	}

	return b.table(), nil
}

// builder turns raw rows into validated records.
type builder struct {
	loader  *Loader
	index   map[domain.Column]int
	columns []domain.Column
	records []domain.MatchRecord
}

func (l *Loader) newBuilder(header []string) (*builder, error) {
	b := &builder{
		loader: l,
		index:  make(map[domain.Column]int, len(domain.Columns)),
	}

	var unknown []string
	for i, name := range header {
		col, ok := domain.ParseColumn(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if _, dup := b.index[col]; dup {
			return nil, apierrors.NewParsingError(fmt.Sprintf("duplicate column %q", col), nil).
				WithContext("column", string(col))
		}
		b.index[col] = i
		b.columns = append(b.columns, col)
	}

	var missing []string
	for _, col := range domain.Columns {
		if _, ok := b.index[col]; !ok {
			missing = append(missing, string(col))
		}
	}
	if len(missing) > 0 {
		return nil, apierrors.NewParsingError(
			fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")), nil).
			WithContext("missing_columns", missing)
	}

	if len(unknown) > 0 {
		l.logger.Warn("ignoring unknown dataset columns", slog.Any("columns", unknown))
	}
	return b, nil
}

func (b *builder) add(line int, row []string) error {
	var rec domain.MatchRecord
	for _, col := range b.columns {
		idx := b.index[col]
		if idx >= len(row) {
			return apierrors.NewParsingError(fmt.Sprintf("row has %d fields, expected at least %d", len(row), idx+1), nil).
				WithContext("row", line)
		}
		if err := rec.Set(col, row[idx]); err != nil {
			return apierrors.NewParsingError(fmt.Sprintf("invalid value in column %s", col), err).
				WithContext("row", line).
				WithContext("column", string(col))
		}
	}

	if err := b.loader.validate.Struct(rec); err != nil {
		return apierrors.NewAppValidationError(validationMessage(err), err).WithContext("row", line)
	}

	b.records = append(b.records, rec)
	return nil
}

func (b *builder) table() *Table {
	records := b.records
	if records == nil {
		records = []domain.MatchRecord{}
	}
	return &Table{
		Columns:  b.columns,
		Records:  records,
		Options:  analytics.Options(records),
		LoadedAt: time.Now(),
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "record failed validation"
	}
	fe := verrs[0]
	return fmt.Sprintf("%s failed %q validation (value %v)", fe.Field(), fe.Tag(), fe.Value())
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
