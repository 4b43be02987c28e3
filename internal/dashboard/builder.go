package dashboard

import (
	"log/slog"
	"time"

	"asiacup/internal/analytics"
	"asiacup/pkg/contracts/domain"
)

const (
	// MessageNoData is shown for any panel whose input is empty.
	MessageNoData = "No data available for the selected filters."
	// MessageNoTossData is shown when no row has toss, selection and result.
	MessageNoTossData = "No toss data available for the selected filters."
)

// Panel identifiers in display order.
const (
	PanelTeamPerformance      = "team_performance"
	PanelTossImpact           = "toss_impact"
	PanelBattingMargin        = "batting_margin"
	PanelBowlingEffectiveness = "bowling_effectiveness"
	PanelFeatureMatrix        = "feature_matrix"
	PanelWinRateOverTime      = "win_rate_over_time"
	PanelVenueResults         = "venue_results"
	PanelTossDecision         = "toss_decision"
)

// Builder turns a filtered subset into a DashboardView.
type Builder struct {
	logger *slog.Logger
	now    func() time.Time
}

// BuilderConfig holds optional Builder settings.
type BuilderConfig struct {
	// Clock overrides time.Now for GeneratedAt.
	Clock func() time.Time
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger, cfg BuilderConfig) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Builder{
		logger: logger.With(slog.String("component", "dashboard_builder")),
		now:    cfg.Clock,
	}
}

// Build computes the KPIs, the grouped win-rate series and every panel for
// records, which must already be filtered by sel.
func (b *Builder) Build(sel domain.Selection, records []domain.MatchRecord) *domain.DashboardView {
	series := analytics.GroupedWinRate(records)

	panels := make([]domain.Panel, 0, len(panelDefs))
	for _, def := range panelDefs {
		var p domain.Panel
		if def.ID == PanelWinRateOverTime {
			p = seriesPanel(def, series)
		} else {
			p = def.project(records)
		}
		panels = append(panels, p)
	}

	b.logger.Debug("dashboard built",
		slog.Int("rows", len(records)),
		slog.Int("groups", len(series)),
		slog.Int("panels", len(panels)))

	return &domain.DashboardView{
		Selection:   sel,
		KPIs:        analytics.ComputeKPIs(records),
		WinRate:     series,
		Panels:      panels,
		GeneratedAt: b.now().UTC(),
	}
}

// Panel builds a single panel by id. The second result is false for an
// unknown id.
func (b *Builder) Panel(id string, records []domain.MatchRecord) (domain.Panel, bool) {
	for _, def := range panelDefs {
		if def.ID != id {
			continue
		}
		if id == PanelWinRateOverTime {
			return seriesPanel(def, analytics.GroupedWinRate(records)), true
		}
		return def.project(records), true
	}
	return domain.Panel{}, false
}

// PanelIDs lists every panel id in display order.
func PanelIDs() []string {
	ids := make([]string, len(panelDefs))
	for i, def := range panelDefs {
		ids[i] = def.ID
	}
	return ids
}
