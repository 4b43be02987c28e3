package http

import (
	"context"
	"io"

	api "asiacup/pkg/contracts/api/v1"
	"asiacup/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations the handlers use
type DashboardServiceInterface interface {
	Options(ctx context.Context) (domain.FilterOptions, error)
	Filter(ctx context.Context, req api.FilterRequest) ([]domain.MatchRecord, domain.Selection, error)
	KPIs(ctx context.Context, req api.FilterRequest) (domain.KPIs, error)
	WinRateSeries(ctx context.Context, req api.FilterRequest) ([]domain.WinRatePoint, error)
	View(ctx context.Context, req api.FilterRequest, source string) (*domain.DashboardView, error)
	Panel(ctx context.Context, req api.FilterRequest, id string) (domain.Panel, error)
	PanelIDs() []string
	ExportFiltered(ctx context.Context, w io.Writer, req api.FilterRequest, format api.ExportFormat) (int64, error)
	ExportFull(ctx context.Context, w io.Writer) (int64, error)
}
