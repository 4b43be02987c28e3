package exporter

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"asiacup/internal/dataset"
	"asiacup/pkg/contracts/domain"
)

func exportRecords() []domain.MatchRecord {
	return []domain.MatchRecord{
		{
			Year: 2018, Team: "India", Opponent: "Pakistan", Ground: "Dubai",
			Toss: "Lose", Selection: "field", Result: "Win", WinBinary: 1,
			RunScored: domain.Float(164), WicketLost: domain.Float(2), WicketTaken: domain.Float(10),
			Fours: domain.Float(17), Sixes: domain.Float(4), AvgBatStrikeRate: domain.Float(93.15),
			BattingMargin: domain.Float(26), BowlingEffectiveness: domain.Float(6),
		},
		{
			Year: 2023, Team: "Sri Lanka", Opponent: "Bangladesh", Ground: "Pallekele",
			Toss: "Win", Selection: "bat", Result: "Win", WinBinary: 1,
			WicketTaken: domain.Float(10), BowlingEffectiveness: domain.Float(5),
		},
		{
			Year: 2023, Team: "Pakistan", Opponent: "Nepal", Ground: "Multan, Pakistan",
			Toss: "Win", Selection: "bat", Result: "Win", WinBinary: 1,
			RunScored: domain.Float(342), WicketLost: domain.Float(6), WicketTaken: domain.Float(10),
			Fours: domain.Float(24), Sixes: domain.Float(8), AvgBatStrikeRate: domain.Float(104.2),
			BattingMargin: domain.Float(238), BowlingEffectiveness: domain.Float(0.1),
		},
		{
			Year: 2023, Team: "Nepal", Opponent: "Pakistan", Ground: "Multan, Pakistan",
			Toss: "Lose", Selection: "", Result: "Lose", WinBinary: 0,
			RunScored: domain.Float(104), WicketLost: domain.Float(10), WicketTaken: domain.Float(6),
			Fours: domain.Float(13), Sixes: domain.Float(1), BattingMargin: domain.Float(-238),
		},
	}
}

func quietLoader() *dataset.Loader {
	return dataset.NewLoader(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestWriteMatchesCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatchesCSV(&buf, domain.Columns, exportRecords()))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "matches_csv", buf.Bytes())
}

func TestWriteMatchesCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatchesCSV(&buf, domain.Columns, exportRecords()))

	table, err := quietLoader().ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, exportRecords(), table.Records)
	assert.Equal(t, domain.Columns, table.Columns)
}

func TestWriteMatchesCSV_KeepsColumnLayout(t *testing.T) {
	layout := append([]domain.Column{}, domain.Columns...)
	layout[0], layout[len(layout)-1] = layout[len(layout)-1], layout[0]

	var buf bytes.Buffer
	require.NoError(t, WriteMatchesCSV(&buf, layout, exportRecords()[:1]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "bowling_effectiveness,team,"))
	assert.True(t, strings.HasSuffix(lines[0], ",year"))
	assert.True(t, strings.HasPrefix(lines[1], "6,India,"))

	table, err := quietLoader().ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, layout, table.Columns)
	assert.Equal(t, exportRecords()[:1], table.Records)
}

func TestWriteMatchesCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatchesCSV(&buf, nil, nil))
	assert.Equal(t, strings.Join(headerRow(domain.Columns), ",")+"\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteMatchesCSV_WriterError(t *testing.T) {
	err := WriteMatchesCSV(failingWriter{}, domain.Columns, exportRecords())
	assert.Error(t, err)
}

func TestWriteMatchesXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatchesXLSX(&buf, domain.Columns, exportRecords()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, headerRow(domain.Columns), rows[0])
	assert.Equal(t, "India", rows[1][1])
	assert.Equal(t, "93.15", rows[1][13])

	table, err := quietLoader().ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, exportRecords(), table.Records)
}
