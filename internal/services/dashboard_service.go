package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"asiacup/internal/analytics"
	"asiacup/internal/dashboard"
	"asiacup/internal/dataset"
	apierrors "asiacup/internal/errors"
	"asiacup/internal/exporter"
	"asiacup/internal/infrastructure"
	api "asiacup/pkg/contracts/api/v1"
	"asiacup/pkg/contracts/domain"
)

// View sources reported in metrics.
const (
	SourceHTTP      = "http"
	SourceWebSocket = "websocket"
	SourceCLI       = "cli"
)

// DashboardService answers every dashboard question by filtering the cached
// dataset and recomputing from scratch. It holds no per-request state.
type DashboardService struct {
	store    *dataset.Store
	builder  *dashboard.Builder
	metrics  *infrastructure.BusinessMetrics
	tracer   trace.Tracer
	validate *validator.Validate
	logger   *slog.Logger
}

// DashboardServiceConfig holds the optional collaborators of a DashboardService.
type DashboardServiceConfig struct {
	Builder *dashboard.Builder
	Metrics *infrastructure.BusinessMetrics
	Tracer  trace.Tracer
}

// NewDashboardService creates a DashboardService over store.
func NewDashboardService(store *dataset.Store, cfg DashboardServiceConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Builder == nil {
		cfg.Builder = dashboard.NewBuilder(logger, dashboard.BuilderConfig{})
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(infrastructure.InstrumentationName)
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})

	return &DashboardService{
		store:    store,
		builder:  cfg.Builder,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		validate: v,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// Options returns the distinct values of every filter dimension.
func (s *DashboardService) Options(ctx context.Context) (domain.FilterOptions, error) {
	table, err := s.table(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return table.Options, nil
}

// Columns returns the column layout of the loaded dataset.
func (s *DashboardService) Columns(ctx context.Context) ([]domain.Column, error) {
	table, err := s.table(ctx)
	if err != nil {
		return nil, err
	}
	return table.Columns, nil
}

// Resolve validates req and fills unspecified dimensions with every
// available value.
func (s *DashboardService) Resolve(ctx context.Context, req api.FilterRequest) (domain.Selection, error) {
	table, err := s.table(ctx)
	if err != nil {
		return domain.Selection{}, err
	}
	if err := s.validateRequest(req); err != nil {
		return domain.Selection{}, err
	}
	return req.Resolve(table.Options), nil
}

// Filter returns the records matching req in source order.
func (s *DashboardService) Filter(ctx context.Context, req api.FilterRequest) ([]domain.MatchRecord, domain.Selection, error) {
	table, sel, err := s.resolve(ctx, req)
	if err != nil {
		return nil, domain.Selection{}, err
	}
	return analytics.Filter(table.Records, sel), sel, nil
}

// KPIs returns the headline metrics of the subset selected by req.
func (s *DashboardService) KPIs(ctx context.Context, req api.FilterRequest) (domain.KPIs, error) {
	filtered, _, err := s.Filter(ctx, req)
	if err != nil {
		return domain.KPIs{}, err
	}
	return analytics.ComputeKPIs(filtered), nil
}

// WinRateSeries returns the per (year, team) win rate of the subset selected
// by req.
func (s *DashboardService) WinRateSeries(ctx context.Context, req api.FilterRequest) ([]domain.WinRatePoint, error) {
	filtered, _, err := s.Filter(ctx, req)
	if err != nil {
		return nil, err
	}
	return analytics.GroupedWinRate(filtered), nil
}

// View recomputes the whole dashboard for req. source names the caller in
// metrics.
func (s *DashboardService) View(ctx context.Context, req api.FilterRequest, source string) (*domain.DashboardView, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.View",
		trace.WithAttributes(attribute.String("dashboard.source", source)))
	defer span.End()

	filtered, sel, err := s.Filter(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	view := s.builder.Build(sel, filtered)

	span.SetAttributes(
		attribute.Int("filter.years", len(sel.Years)),
		attribute.Int("filter.teams", len(sel.Teams)),
		attribute.Int("filter.opponents", len(sel.Opponents)),
		attribute.Int("dashboard.rows", len(filtered)),
	)
	s.metrics.RecordDashboardView(ctx, source, len(filtered))

	s.logger.DebugContext(ctx, "dashboard view computed",
		slog.String("source", source),
		slog.Int("rows", len(filtered)),
		slog.Float64("win_rate", view.KPIs.WinRate))
	return view, nil
}

// Panel builds the single dashboard panel id for the subset selected by req.
func (s *DashboardService) Panel(ctx context.Context, req api.FilterRequest, id string) (domain.Panel, error) {
	filtered, _, err := s.Filter(ctx, req)
	if err != nil {
		return domain.Panel{}, err
	}
	panel, ok := s.builder.Panel(id, filtered)
	if !ok {
		return domain.Panel{}, fmt.Errorf("%w: %s", ErrPanelNotFound, id)
	}
	return panel, nil
}

// PanelIDs lists the dashboard panels in display order.
func (s *DashboardService) PanelIDs() []string {
	return dashboard.PanelIDs()
}

// ExportFiltered writes the subset selected by req in the given format and
// returns the number of bytes written.
func (s *DashboardService) ExportFiltered(ctx context.Context, w io.Writer, req api.FilterRequest, format api.ExportFormat) (int64, error) {
	table, sel, err := s.resolve(ctx, req)
	if err != nil {
		return 0, err
	}
	kind := exporter.KindFilteredCSV
	if format == api.ExportXLSX {
		kind = exporter.KindFilteredXLSX
	}
	return s.export(ctx, w, kind, format, table.Columns, analytics.Filter(table.Records, sel))
}

// ExportFilteredXLSX writes the subset selected by req as a workbook.
func (s *DashboardService) ExportFilteredXLSX(ctx context.Context, w io.Writer, req api.FilterRequest) (int64, error) {
	return s.ExportFiltered(ctx, w, req, api.ExportXLSX)
}

// ExportFull writes the whole dataset as CSV.
func (s *DashboardService) ExportFull(ctx context.Context, w io.Writer) (int64, error) {
	table, err := s.table(ctx)
	if err != nil {
		return 0, err
	}
	return s.export(ctx, w, exporter.KindFullCSV, api.ExportCSV, table.Columns, table.Records)
}

// Bundle collects the data of a file export for req.
func (s *DashboardService) Bundle(ctx context.Context, req api.FilterRequest) (exporter.Bundle, error) {
	table, sel, err := s.resolve(ctx, req)
	if err != nil {
		return exporter.Bundle{}, err
	}
	return exporter.Bundle{
		Columns:  table.Columns,
		Filtered: analytics.Filter(table.Records, sel),
		Full:     table.Records,
	}, nil
}

// RecordExport counts a file export in metrics.
func (s *DashboardService) RecordExport(ctx context.Context, files []exporter.ExportedFile) {
	for _, f := range files {
		s.metrics.RecordExport(ctx, f.Kind, f.Bytes)
	}
}

func (s *DashboardService) export(ctx context.Context, w io.Writer, kind string, format api.ExportFormat, columns []domain.Column, records []domain.MatchRecord) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "DashboardService.Export",
		trace.WithAttributes(
			attribute.String("export.kind", kind),
			attribute.Int("export.rows", len(records))))
	defer span.End()

	cw := &countingWriter{w: w}
	var err error
	switch format {
	case api.ExportCSV, "":
		err = exporter.WriteMatchesCSV(cw, columns, records)
	case api.ExportXLSX:
		err = exporter.WriteMatchesXLSX(cw, columns, records)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return cw.n, err
	}

	s.metrics.RecordExport(ctx, kind, cw.n)
	s.logger.InfoContext(ctx, "export written",
		slog.String("kind", kind),
		slog.Int("rows", len(records)),
		slog.Int64("bytes", cw.n))
	return cw.n, nil
}

func (s *DashboardService) resolve(ctx context.Context, req api.FilterRequest) (*dataset.Table, domain.Selection, error) {
	table, err := s.table(ctx)
	if err != nil {
		return nil, domain.Selection{}, err
	}
	if err := s.validateRequest(req); err != nil {
		return nil, domain.Selection{}, err
	}
	return table, req.Resolve(table.Options), nil
}

func (s *DashboardService) table(ctx context.Context) (*dataset.Table, error) {
	if s.store == nil {
		return nil, ErrDatasetNotLoaded
	}
	table, err := s.store.Table(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrDatasetNotLoaded, err)
	}
	return table, nil
}

func (s *DashboardService) validateRequest(req api.FilterRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidSelection, err)
	}
	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.TrimPrefix(fe.Namespace(), "FilterRequest."),
			Message: fmt.Sprintf("failed %q validation", fe.Tag()),
		})
	}
	return &SelectionError{Fields: fields}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
