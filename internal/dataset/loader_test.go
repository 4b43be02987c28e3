package dataset

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apierrors "asiacup/internal/errors"
	"asiacup/pkg/contracts/domain"
)

const testHeader = "year,team,opponent,ground,toss,selection,result,win_binary,run_scored,wicket_lost,wicket_taken,fours,sixes,avg_bat_strike_rate,batting_margin,bowling_effectiveness"

func quietLoader() *Loader {
	return NewLoader(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func requireAppError(t *testing.T, err error, errType apierrors.ErrorType) *apierrors.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, errType, appErr.Type)
	return appErr
}

func TestLoader_LoadCSV(t *testing.T) {
	table, err := quietLoader().Load(filepath.Join("testdata", "matches.csv"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("testdata", "matches.csv"), table.Source)
	assert.Equal(t, domain.Columns, table.Columns)
	require.Equal(t, 8, table.Len())
	assert.False(t, table.LoadedAt.IsZero())

	first := table.Records[0]
	assert.Equal(t, domain.MatchRecord{
		Year:                 2018,
		Team:                 "India",
		Opponent:             "Pakistan",
		Ground:               "Dubai",
		Toss:                 "Lose",
		Selection:            "field",
		Result:               "Win",
		WinBinary:            1,
		RunScored:            domain.Float(164),
		WicketLost:           domain.Float(2),
		WicketTaken:          domain.Float(10),
		Fours:                domain.Float(17),
		Sixes:                domain.Float(4),
		AvgBatStrikeRate:     domain.Float(93.15),
		BattingMargin:        domain.Float(26),
		BowlingEffectiveness: domain.Float(6),
	}, first)

	// Source order is kept.
	assert.Equal(t, "Pakistan", table.Records[1].Team)
	assert.Equal(t, "Bangladesh", table.Records[7].Team)

	// Empty cells are missing values.
	assert.False(t, table.Records[4].BowlingEffectiveness.Valid)
	assert.False(t, table.Records[5].Sixes.Valid)
	assert.False(t, table.Records[6].RunScored.Valid)
	assert.Empty(t, table.Records[7].Selection)

	assert.Equal(t, []int{2018, 2022, 2023}, table.Options.Years)
	assert.Equal(t, []string{"Bangladesh", "India", "Pakistan", "Sri Lanka"}, table.Options.Teams)
	assert.Equal(t, []string{"Bangladesh", "India", "Pakistan", "Sri Lanka"}, table.Options.Opponents)
}

func TestLoader_LoadIsRepeatable(t *testing.T) {
	path := filepath.Join("testdata", "matches.csv")
	first, err := quietLoader().Load(path)
	require.NoError(t, err)
	second, err := quietLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Options, second.Options)
}

func TestLoader_LoadMissingFile(t *testing.T) {
	_, err := quietLoader().Load(filepath.Join(t.TempDir(), "missing.csv"))
	appErr := requireAppError(t, err, apierrors.ErrTypeStorage)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, appErr.Context, "path")
}

func TestLoader_ReadCSV(t *testing.T) {
	row := "2023,India,Nepal,Pallekele,Win,field,Win,1,231,0,10,20,1,110.5,82,4.1"

	tests := []struct {
		name    string
		input   string
		wantErr apierrors.ErrorType
		check   func(*testing.T, *Table)
	}{
		{
			name:  "byte order mark",
			input: "\ufeff" + testHeader + "\n" + row + "\n",
			check: func(t *testing.T, table *Table) {
				require.Equal(t, 1, table.Len())
				assert.Equal(t, 2023, table.Records[0].Year)
			},
		},
		{
			name:  "unknown columns are ignored",
			input: "match_id," + testHeader + ",notes\n" + "77," + row + ",rain\n",
			check: func(t *testing.T, table *Table) {
				require.Equal(t, 1, table.Len())
				assert.Equal(t, "Nepal", table.Records[0].Opponent)
				assert.Equal(t, domain.Columns, table.Columns)
			},
		},
		{
			name:  "column order is remembered",
			input: reorderedCSV(),
			check: func(t *testing.T, table *Table) {
				require.Equal(t, 1, table.Len())
				assert.Equal(t, domain.ColumnTeam, table.Columns[0])
				assert.Equal(t, domain.ColumnYear, table.Columns[1])
				assert.Equal(t, "India", table.Records[0].Team)
				assert.Equal(t, 2023, table.Records[0].Year)
			},
		},
		{
			name:  "headers are case insensitive",
			input: strings.ToUpper(testHeader) + "\n" + row + "\n",
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, 1, table.Len())
			},
		},
		{
			name:  "float formatted integers",
			input: testHeader + "\n" + strings.Replace(strings.Replace(row, "2023", "2023.0", 1), ",1,231", ",1.0,231", 1) + "\n",
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, 2023, table.Records[0].Year)
				assert.Equal(t, 1, table.Records[0].WinBinary)
			},
		},
		{
			name:  "selection is normalised",
			input: testHeader + "\n" + strings.Replace(row, "field", "Field", 1) + "\n",
			check: func(t *testing.T, table *Table) {
				assert.Equal(t, "field", table.Records[0].Selection)
			},
		},
		{
			name:  "header only",
			input: testHeader + "\n",
			check: func(t *testing.T, table *Table) {
				assert.NotNil(t, table.Records)
				assert.Equal(t, 0, table.Len())
				assert.Empty(t, table.Options.Years)
			},
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: apierrors.ErrTypeParsing,
		},
		{
			name:    "missing column",
			input:   strings.Replace(testHeader, ",toss", "", 1) + "\n",
			wantErr: apierrors.ErrTypeParsing,
		},
		{
			name:    "duplicate column",
			input:   testHeader + ",year\n" + row + ",2023\n",
			wantErr: apierrors.ErrTypeParsing,
		},
		{
			name:    "unparsable year",
			input:   testHeader + "\n" + strings.Replace(row, "2023", "twenty", 1) + "\n",
			wantErr: apierrors.ErrTypeParsing,
		},
		{
			name:    "unparsable measure",
			input:   testHeader + "\n" + strings.Replace(row, "110.5", "fast", 1) + "\n",
			wantErr: apierrors.ErrTypeParsing,
		},
		{
			name:    "wrong field count",
			input:   testHeader + "\n" + row + ",extra\n",
			wantErr: apierrors.ErrTypeParsing,
		},
		{
			name:    "invalid selection",
			input:   testHeader + "\n" + strings.Replace(row, "field", "bowl", 1) + "\n",
			wantErr: apierrors.ErrTypeValidation,
		},
		{
			name:    "win_binary out of range",
			input:   testHeader + "\n" + strings.Replace(row, ",1,231", ",2,231", 1) + "\n",
			wantErr: apierrors.ErrTypeValidation,
		},
		{
			name:    "missing team",
			input:   testHeader + "\n" + strings.Replace(row, "India", "", 1) + "\n",
			wantErr: apierrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := quietLoader().ReadCSV(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				requireAppError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, table)
		})
	}
}

func TestLoader_ReadCSV_ErrorRow(t *testing.T) {
	input := testHeader + "\n" +
		"2023,India,Nepal,Pallekele,Win,field,Win,1,231,0,10,20,1,110.5,82,4.1\n" +
		"2023,Nepal,India,Pallekele,Lose,bat,Lose,0,230,10,0,22,1,95,-82,abc\n"

	_, err := quietLoader().ReadCSV(strings.NewReader(input))
	appErr := requireAppError(t, err, apierrors.ErrTypeParsing)
	assert.Equal(t, 3, appErr.Context["row"])
	assert.Equal(t, "bowling_effectiveness", appErr.Context["column"])
}

func TestLoader_ValidationMessageUsesColumnNames(t *testing.T) {
	input := testHeader + "\n" + "0,India,Nepal,Pallekele,Win,field,Win,1,231,0,10,20,1,110.5,82,4.1\n"

	_, err := quietLoader().ReadCSV(strings.NewReader(input))
	appErr := requireAppError(t, err, apierrors.ErrTypeValidation)
	assert.Contains(t, appErr.Message, "year")
	assert.Equal(t, 2, appErr.Context["row"])
}

func TestLoader_ReadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		headerCells(),
		{2023, "India", "Pakistan", "Colombo (RPS)", "Lose", "bat", "Win", 1, 356, 2, 10, 32, 9, 104.55, 228, ""},
		{},
		{2023, "Pakistan", "India", "Colombo (RPS)", "Win", "field", "Lose", 0, 128, 8, 2, 10},
	})

	table, err := quietLoader().Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, "India", table.Records[0].Team)
	assert.Equal(t, domain.Float(104.55), table.Records[0].AvgBatStrikeRate)
	assert.False(t, table.Records[0].BowlingEffectiveness.Valid)

	// Trailing empty cells are padded.
	assert.Equal(t, domain.Float(10), table.Records[1].Fours)
	assert.False(t, table.Records[1].Sixes.Valid)
	assert.False(t, table.Records[1].BowlingEffectiveness.Valid)
}

func TestLoader_ReadXLSX_MissingColumn(t *testing.T) {
	header := headerCells()[1:]
	path := writeWorkbook(t, [][]interface{}{header})

	_, err := quietLoader().Load(path)
	requireAppError(t, err, apierrors.ErrTypeParsing)
}

func TestLoader_ReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := quietLoader().ReadXLSX(bytes.NewReader([]byte("year,team\n")))
	requireAppError(t, err, apierrors.ErrTypeParsing)
}

func reorderedCSV() string {
	cols := strings.Split(testHeader, ",")
	vals := strings.Split("2023,India,Nepal,Pallekele,Win,field,Win,1,231,0,10,20,1,110.5,82,4.1", ",")
	cols[0], cols[1] = cols[1], cols[0]
	vals[0], vals[1] = vals[1], vals[0]
	return strings.Join(cols, ",") + "\n" + strings.Join(vals, ",") + "\n"
}

func headerCells() []interface{} {
	cells := make([]interface{}, len(domain.Columns))
	for i, col := range domain.Columns {
		cells[i] = string(col)
	}
	return cells
}

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "matches.xlsx")
	require.NoError(t, f.SaveAs(path))
	_, err := os.Stat(path)
	require.NoError(t, err)
	return path
}
