package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"asiacup/internal/analytics"
	"asiacup/internal/dataset"
	"asiacup/internal/exporter"
	api "asiacup/pkg/contracts/api/v1"
	"asiacup/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func serviceRecords() []domain.MatchRecord {
	return []domain.MatchRecord{
		{Year: 2018, Team: "India", Opponent: "Pakistan", Ground: "Dubai", Toss: "Lose", Selection: "field", Result: "Win", WinBinary: 1, RunScored: domain.Float(164)},
		{Year: 2018, Team: "Pakistan", Opponent: "India", Ground: "Dubai", Toss: "Win", Selection: "bat", Result: "Lose", WinBinary: 0, RunScored: domain.Float(162)},
		{Year: 2023, Team: "India", Opponent: "Pakistan", Ground: "Colombo (RPS)", Toss: "Lose", Selection: "bat", Result: "Win", WinBinary: 1, RunScored: domain.Float(356)},
		{Year: 2023, Team: "Pakistan", Opponent: "India", Ground: "Colombo (RPS)", Toss: "Win", Selection: "field", Result: "Lose", WinBinary: 0, RunScored: domain.Float(128)},
		{Year: 2023, Team: "India", Opponent: "Nepal", Ground: "Pallekele", Toss: "Win", Selection: "field", Result: "Win", WinBinary: 1},
	}
}

func newTestService(t *testing.T) (*DashboardService, *tracetest.SpanRecorder) {
	t.Helper()
	records := serviceRecords()
	table := &dataset.Table{
		Source:  "memory.csv",
		Columns: domain.Columns,
		Records: records,
		Options: analytics.Options(records),
	}
	recorder := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	svc := NewDashboardService(dataset.NewStaticStore(table), DashboardServiceConfig{
		Tracer: tp.Tracer("test"),
	}, testLogger())
	return svc, recorder
}

func TestDashboardService_Options(t *testing.T) {
	svc, _ := newTestService(t)

	opts, err := svc.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2018, 2023}, opts.Years)
	assert.Equal(t, []string{"India", "Pakistan"}, opts.Teams)
	assert.Equal(t, []string{"India", "Nepal", "Pakistan"}, opts.Opponents)
}

func TestDashboardService_Filter(t *testing.T) {
	tests := []struct {
		name     string
		req      api.FilterRequest
		wantRows int
		check    func(*testing.T, domain.Selection)
	}{
		{
			name:     "unspecified means everything",
			req:      api.FilterRequest{},
			wantRows: 5,
			check: func(t *testing.T, sel domain.Selection) {
				assert.Equal(t, []int{2018, 2023}, sel.Years)
			},
		},
		{
			name:     "single year",
			req:      api.FilterRequest{Years: []int{2023}},
			wantRows: 3,
		},
		{
			name:     "team and opponent",
			req:      api.FilterRequest{Teams: []string{"India"}, Opponents: []string{"Pakistan"}},
			wantRows: 2,
		},
		{
			name:     "explicit empty dimension",
			req:      api.FilterRequest{Teams: []string{}},
			wantRows: 0,
			check: func(t *testing.T, sel domain.Selection) {
				assert.NotNil(t, sel.Teams)
				assert.Empty(t, sel.Teams)
			},
		},
		{
			name:     "unknown value",
			req:      api.FilterRequest{Opponents: []string{"Hong Kong"}},
			wantRows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			rows, sel, err := svc.Filter(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			if tt.check != nil {
				tt.check(t, sel)
			}
		})
	}
}

func TestDashboardService_InvalidSelection(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Filter(context.Background(), api.FilterRequest{Years: []int{2023, 0}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSelection))

	var selErr *SelectionError
	require.True(t, errors.As(err, &selErr))
	require.Len(t, selErr.Fields, 1)
	assert.Equal(t, "years[1]", selErr.Fields[0].Field)
	assert.Contains(t, selErr.Error(), "years[1]")

	_, err = svc.KPIs(context.Background(), api.FilterRequest{Teams: []string{strings.Repeat("x", 101)}})
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestDashboardService_KPIsAndSeries(t *testing.T) {
	svc, _ := newTestService(t)
	req := api.FilterRequest{Years: []int{2023}}

	kpis, err := svc.KPIs(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, domain.KPIs{TotalMatches: 3, WinRate: 66.67, TossWinRate: 33.33}, kpis)

	series, err := svc.WinRateSeries(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []domain.WinRatePoint{
		{Year: 2023, Team: "India", WinRate: 1, Matches: 2},
		{Year: 2023, Team: "Pakistan", WinRate: 0, Matches: 1},
	}, series)
}

func TestDashboardService_KPIsSkipUnrecordedToss(t *testing.T) {
	input := `year,team,opponent,ground,toss,selection,result,win_binary,run_scored,wicket_lost,wicket_taken,fours,sixes,avg_bat_strike_rate,batting_margin,bowling_effectiveness
2016,Oman,UAE,Fatullah,Win,bat,Win,1,,,,,,,,
2016,UAE,Oman,Fatullah,NA,,NA,0,,,,,,,,
`
	table, err := dataset.NewLoader(testLogger()).ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	svc := NewDashboardService(dataset.NewStaticStore(table), DashboardServiceConfig{}, testLogger())

	kpis, err := svc.KPIs(context.Background(), api.FilterRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.KPIs{TotalMatches: 2, WinRate: 50, TossWinRate: 50}, kpis)
}

func TestDashboardService_View(t *testing.T) {
	svc, recorder := newTestService(t)

	view, err := svc.View(context.Background(), api.FilterRequest{Teams: []string{"India"}}, SourceHTTP)
	require.NoError(t, err)
	assert.Equal(t, 3, view.KPIs.TotalMatches)
	assert.Equal(t, float64(100), view.KPIs.WinRate)
	assert.Equal(t, []string{"India"}, view.Selection.Teams)
	assert.NotEmpty(t, view.Panels)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "DashboardService.View", spans[0].Name())
}

func TestDashboardService_Panel(t *testing.T) {
	svc, _ := newTestService(t)

	panel, err := svc.Panel(context.Background(), api.FilterRequest{Years: []int{2023}}, "batting_margin")
	require.NoError(t, err)
	assert.Equal(t, "batting_margin", panel.ID)

	_, err = svc.Panel(context.Background(), api.FilterRequest{}, "radar")
	assert.ErrorIs(t, err, ErrPanelNotFound)

	_, err = svc.Panel(context.Background(), api.FilterRequest{Years: []int{0}}, "batting_margin")
	assert.ErrorIs(t, err, ErrInvalidSelection)

	assert.Contains(t, svc.PanelIDs(), "win_rate_over_time")
}

func TestDashboardService_ViewRecordsError(t *testing.T) {
	svc, recorder := newTestService(t)

	_, err := svc.View(context.Background(), api.FilterRequest{Years: []int{-1}}, SourceWebSocket)
	require.ErrorIs(t, err, ErrInvalidSelection)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.NotEmpty(t, spans[0].Events())
}

func TestDashboardService_ExportFiltered(t *testing.T) {
	svc, _ := newTestService(t)

	var buf bytes.Buffer
	n, err := svc.ExportFiltered(context.Background(), &buf, api.FilterRequest{Years: []int{2018}}, api.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	table, err := dataset.NewLoader(testLogger()).ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, serviceRecords()[:2], table.Records)
}

func TestDashboardService_ExportFilteredXLSX(t *testing.T) {
	svc, _ := newTestService(t)

	var buf bytes.Buffer
	n, err := svc.ExportFilteredXLSX(context.Background(), &buf, api.FilterRequest{Opponents: []string{"Nepal"}})
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exporter.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestDashboardService_ExportFull(t *testing.T) {
	svc, _ := newTestService(t)

	var buf bytes.Buffer
	_, err := svc.ExportFull(context.Background(), &buf)
	require.NoError(t, err)

	table, err := dataset.NewLoader(testLogger()).ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, serviceRecords(), table.Records)
}

func TestDashboardService_ExportUnsupportedFormat(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ExportFiltered(context.Background(), io.Discard, api.FilterRequest{}, api.ExportFormat("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDashboardService_Bundle(t *testing.T) {
	svc, _ := newTestService(t)

	b, err := svc.Bundle(context.Background(), api.FilterRequest{Years: []int{2023}, Teams: []string{"Pakistan"}})
	require.NoError(t, err)
	assert.Equal(t, domain.Columns, b.Columns)
	assert.Len(t, b.Filtered, 1)
	assert.Len(t, b.Full, 5)
}

func TestDashboardService_DatasetNotLoaded(t *testing.T) {
	loadErr := errors.New("no such file")
	store := dataset.NewStore("missing.csv", testLogger(), dataset.WithLoadFunc(func(string) (*dataset.Table, error) {
		return nil, loadErr
	}))
	svc := NewDashboardService(store, DashboardServiceConfig{}, testLogger())

	_, err := svc.Options(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
	assert.ErrorIs(t, err, loadErr)

	_, err = svc.View(context.Background(), api.FilterRequest{}, SourceCLI)
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)

	nilStore := NewDashboardService(nil, DashboardServiceConfig{}, nil)
	_, err = nilStore.Columns(context.Background())
	assert.ErrorIs(t, err, ErrDatasetNotLoaded)
}

func TestDashboardService_Resolve(t *testing.T) {
	svc, _ := newTestService(t)

	sel, err := svc.Resolve(context.Background(), api.FilterRequest{Years: []int{2018}})
	require.NoError(t, err)
	assert.Equal(t, domain.Selection{
		Years:     []int{2018},
		Teams:     []string{"India", "Pakistan"},
		Opponents: []string{"India", "Nepal", "Pakistan"},
	}, sel)
}
