package domain

import "time"

// Selection is the set of values chosen for each filter dimension.
// An empty slice selects nothing for that dimension.
type Selection struct {
	Years     []int    `json:"years"`
	Teams     []string `json:"teams"`
	Opponents []string `json:"opponents"`
}

// FilterOptions lists the distinct values available for each filter
// dimension, sorted ascending. These are also the default selection.
type FilterOptions struct {
	Years     []int    `json:"years"`
	Teams     []string `json:"teams"`
	Opponents []string `json:"opponents"`
}

// All returns a Selection that includes every option.
func (o FilterOptions) All() Selection {
	return Selection{
		Years:     append([]int{}, o.Years...),
		Teams:     append([]string{}, o.Teams...),
		Opponents: append([]string{}, o.Opponents...),
	}
}

// KPIs are the headline metrics of a filtered subset. Rates are percentages
// rounded to two decimals and are zero when TotalMatches is zero.
type KPIs struct {
	TotalMatches int     `json:"total_matches"`
	WinRate      float64 `json:"win_rate"`
	TossWinRate  float64 `json:"toss_win_rate"`
}

// WinRatePoint is the mean of win_binary for one (year, team) group.
type WinRatePoint struct {
	Year    int     `json:"year"`
	Team    string  `json:"team"`
	WinRate float64 `json:"win_rate"`
	Matches int     `json:"matches"`
}

// ChartKind identifies how a client should draw a panel.
type ChartKind string

const (
	ChartBar           ChartKind = "bar"
	ChartSunburst      ChartKind = "sunburst"
	ChartScatter       ChartKind = "scatter"
	ChartScatterMatrix ChartKind = "scatter_matrix"
	ChartLine          ChartKind = "line"
	ChartHistogram     ChartKind = "histogram"
	ChartPie           ChartKind = "pie"
)

// Tab groups panels the way the dashboard lays them out.
type Tab string

const (
	TabOverview Tab = "overview"
	TabBatting  Tab = "batting"
	TabBowling  Tab = "bowling"
	TabTrends   Tab = "trends"
	TabVenue    Tab = "venue"
)

// Tabs is the display order of the dashboard tabs.
var Tabs = []Tab{TabOverview, TabBatting, TabBowling, TabTrends, TabVenue}

// Panel is a declarative chart description plus the rows it draws. Rows are
// projections of the filtered subset onto Columns, in source order.
type Panel struct {
	ID             string           `json:"id"`
	Tab            Tab              `json:"tab"`
	Kind           ChartKind        `json:"kind"`
	Title          string           `json:"title"`
	X              string           `json:"x,omitempty"`
	Y              string           `json:"y,omitempty"`
	Color          string           `json:"color,omitempty"`
	Names          string           `json:"names,omitempty"`
	AnimationFrame string           `json:"animation_frame,omitempty"`
	BarMode        string           `json:"bar_mode,omitempty"`
	Markers        bool             `json:"markers,omitempty"`
	Path           []string         `json:"path,omitempty"`
	Dimensions     []string         `json:"dimensions,omitempty"`
	HoverData      []string         `json:"hover_data,omitempty"`
	Columns        []string         `json:"columns"`
	Rows           []map[string]any `json:"rows"`
	Empty          bool             `json:"empty"`
	Message        string           `json:"message,omitempty"`
}

// DashboardView is everything a client needs to render the dashboard for
// one selection.
type DashboardView struct {
	Selection   Selection      `json:"selection"`
	KPIs        KPIs           `json:"kpis"`
	WinRate     []WinRatePoint `json:"win_rate"`
	Panels      []Panel        `json:"panels"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// PanelsForTab returns the panels of one tab in display order.
func (v *DashboardView) PanelsForTab(tab Tab) []Panel {
	var out []Panel
	for _, p := range v.Panels {
		if p.Tab == tab {
			out = append(out, p)
		}
	}
	return out
}
