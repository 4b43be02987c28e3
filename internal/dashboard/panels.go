package dashboard

import (
	"asiacup/pkg/contracts/domain"
)

// panelDef describes one chart. Columns is the projection sent to the
// client; Required columns must be present for a row to be drawn.
type panelDef struct {
	domain.Panel
	columns  []domain.Column
	required []domain.Column
	message  string
}

var panelDefs = []panelDef{
	{
		Panel: domain.Panel{
			ID:             PanelTeamPerformance,
			Tab:            domain.TabOverview,
			Kind:           domain.ChartBar,
			Title:          "Wins vs Losses by Team",
			X:              "team",
			Color:          "result",
			AnimationFrame: "year",
			BarMode:        "stack",
		},
		columns: []domain.Column{domain.ColumnTeam, domain.ColumnResult, domain.ColumnYear},
	},
	{
		Panel: domain.Panel{
			ID:    PanelTossImpact,
			Tab:   domain.TabOverview,
			Kind:  domain.ChartSunburst,
			Title: "Toss → Decision → Match Result Breakdown",
			Path:  []string{"toss", "selection", "result"},
		},
		columns:  []domain.Column{domain.ColumnToss, domain.ColumnSelection, domain.ColumnResult},
		required: []domain.Column{domain.ColumnToss, domain.ColumnSelection, domain.ColumnResult},
		message:  MessageNoTossData,
	},
	{
		Panel: domain.Panel{
			ID:        PanelBattingMargin,
			Tab:       domain.TabBatting,
			Kind:      domain.ChartScatter,
			Title:     "Batting Margin vs Runs Scored",
			X:         "batting_margin",
			Y:         "run_scored",
			Color:     "result",
			HoverData: []string{"team", "opponent", "year"},
		},
		columns: []domain.Column{
			domain.ColumnBattingMargin, domain.ColumnRunScored, domain.ColumnResult,
			domain.ColumnTeam, domain.ColumnOpponent, domain.ColumnYear,
		},
		required: []domain.Column{domain.ColumnBattingMargin, domain.ColumnRunScored},
	},
	{
		Panel: domain.Panel{
			ID:        PanelBowlingEffectiveness,
			Tab:       domain.TabBowling,
			Kind:      domain.ChartScatter,
			Title:     "Bowling Effectiveness vs Wickets Taken",
			X:         "bowling_effectiveness",
			Y:         "wicket_taken",
			Color:     "result",
			HoverData: []string{"team", "opponent", "year"},
		},
		columns: []domain.Column{
			domain.ColumnBowlingEffectiveness, domain.ColumnWicketTaken, domain.ColumnResult,
			domain.ColumnTeam, domain.ColumnOpponent, domain.ColumnYear,
		},
		required: []domain.Column{domain.ColumnBowlingEffectiveness, domain.ColumnWicketTaken},
	},
	{
		Panel: domain.Panel{
			ID:    PanelFeatureMatrix,
			Tab:   domain.TabTrends,
			Kind:  domain.ChartScatterMatrix,
			Title: "Scatter Matrix of Match Features",
			Color: "result",
			Dimensions: []string{
				"run_scored", "wicket_lost", "fours", "sixes", "wicket_taken", "avg_bat_strike_rate",
			},
		},
		columns: []domain.Column{
			domain.ColumnRunScored, domain.ColumnWicketLost, domain.ColumnFours, domain.ColumnSixes,
			domain.ColumnWicketTaken, domain.ColumnAvgBatStrikeRate, domain.ColumnResult,
		},
	},
	{
		Panel: domain.Panel{
			ID:      PanelWinRateOverTime,
			Tab:     domain.TabTrends,
			Kind:    domain.ChartLine,
			Title:   "Team Win Rate Over Time",
			X:       "year",
			Y:       "win_rate",
			Color:   "team",
			Markers: true,
		},
	},
	{
		Panel: domain.Panel{
			ID:             PanelVenueResults,
			Tab:            domain.TabVenue,
			Kind:           domain.ChartHistogram,
			Title:          "Match Results by Venue",
			X:              "ground",
			Color:          "result",
			BarMode:        "group",
			AnimationFrame: "year",
		},
		columns: []domain.Column{domain.ColumnGround, domain.ColumnResult, domain.ColumnYear},
	},
	{
		Panel: domain.Panel{
			ID:    PanelTossDecision,
			Tab:   domain.TabVenue,
			Kind:  domain.ChartPie,
			Title: "Bat vs Field Choice after Toss",
			Names: "selection",
		},
		columns:  []domain.Column{domain.ColumnSelection},
		required: []domain.Column{domain.ColumnSelection},
	},
}

var seriesColumns = []string{"year", "team", "win_rate", "matches"}

// project copies the definition and fills its rows from records, keeping source
// order and skipping rows that lack a required column.
func (s panelDef) project(records []domain.MatchRecord) domain.Panel {
	p := s.Panel
	p.Columns = columnNames(s.columns)
	p.Rows = make([]map[string]any, 0, len(records))

	for i := range records {
		rec := &records[i]
		if !hasAll(rec, s.required) {
			continue
		}
		row := make(map[string]any, len(s.columns))
		for _, col := range s.columns {
			row[string(col)] = rec.Value(col)
		}
		p.Rows = append(p.Rows, row)
	}

	if len(p.Rows) == 0 {
		p.Empty = true
		p.Message = s.message
		if p.Message == "" {
			p.Message = MessageNoData
		}
	}
	return p
}

func seriesPanel(s panelDef, series []domain.WinRatePoint) domain.Panel {
	p := s.Panel
	p.Columns = seriesColumns
	p.Rows = make([]map[string]any, 0, len(series))
	for _, pt := range series {
		p.Rows = append(p.Rows, map[string]any{
			"year":     pt.Year,
			"team":     pt.Team,
			"win_rate": pt.WinRate,
			"matches":  pt.Matches,
		})
	}
	if len(p.Rows) == 0 {
		p.Empty = true
		p.Message = MessageNoData
	}
	return p
}

func hasAll(rec *domain.MatchRecord, cols []domain.Column) bool {
	for _, col := range cols {
		if rec.Value(col) == nil {
			return false
		}
	}
	return true
}

func columnNames(cols []domain.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return names
}
