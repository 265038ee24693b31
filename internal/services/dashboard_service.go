package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"petrodash/internal/analytics"
	"petrodash/internal/config"
	"petrodash/internal/dataset"
	"petrodash/internal/infrastructure"
	"petrodash/pkg/contracts/domain"
)

// UpdateNotifier receives a notification after every successful reload.
// The websocket hub implements it.
type UpdateNotifier interface {
	BroadcastDataUpdate(data interface{})
}

// ReloadResult describes the outcome of a forced re-parse.
type ReloadResult struct {
	Source     string    `json:"source"`
	Records    int       `json:"records"`
	Regions    int       `json:"regions"`
	Years      int       `json:"years"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// DashboardService answers the dashboard queries over the cached sales table.
type DashboardService struct {
	provider dataset.TableProvider
	geoPath  string
	defaults config.DashboardConfig
	notifier UpdateNotifier
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger
}

// NewDashboardService wires the service. notifier and metrics may be nil.
func NewDashboardService(provider dataset.TableProvider, geoPath string, defaults config.DashboardConfig, notifier UpdateNotifier, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		provider: provider,
		geoPath:  geoPath,
		defaults: defaults,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "dashboard_service")),
	}
}

// DefaultK reports the K used when the client omits the parameter.
func (s *DashboardService) DefaultK() int {
	if s.defaults.DefaultK > 0 {
		return s.defaults.DefaultK
	}
	return 5
}

// MaxK reports the upper bound accepted for the K parameter.
func (s *DashboardService) MaxK() int {
	if s.defaults.MaxK > 0 {
		return s.defaults.MaxK
	}
	return 10
}

// Years lists the years present in the table, most recent first.
func (s *DashboardService) Years(ctx context.Context) ([]int, error) {
	table, err := s.provider.Table(ctx)
	if err != nil {
		return nil, err
	}
	s.countQuery(ctx, "years")
	return table.Years(), nil
}

// Regions lists the region labels alphabetically.
func (s *DashboardService) Regions(ctx context.Context) ([]string, error) {
	table, err := s.provider.Table(ctx)
	if err != nil {
		return nil, err
	}
	s.countQuery(ctx, "regions")
	return table.Regions(), nil
}

// TopSales returns the k highest-selling regions for the year.
func (s *DashboardService) TopSales(ctx context.Context, year, k int) ([]domain.RegionSales, error) {
	table, err := s.tableWithYear(ctx, year)
	if err != nil {
		return nil, err
	}
	s.countQuery(ctx, "sales_top")
	return analytics.TopK(table, year, k), nil
}

// BottomSales returns the k lowest-selling regions for the year.
func (s *DashboardService) BottomSales(ctx context.Context, year, k int) ([]domain.RegionSales, error) {
	table, err := s.tableWithYear(ctx, year)
	if err != nil {
		return nil, err
	}
	s.countQuery(ctx, "sales_bottom")
	return analytics.BottomK(table, year, k), nil
}

// Summary computes the headline metrics for a region at the given year.
func (s *DashboardService) Summary(ctx context.Context, region string, year int) (domain.RegionSummary, error) {
	table, err := s.provider.Table(ctx)
	if err != nil {
		return domain.RegionSummary{}, err
	}
	if !table.HasRegion(region) {
		return domain.RegionSummary{}, ErrRegionNotFound
	}

	summary, err := analytics.Summary(table, region, year)
	if errors.Is(err, analytics.ErrNoData) {
		return domain.RegionSummary{}, ErrNoData
	}
	if err != nil {
		return domain.RegionSummary{}, err
	}

	s.countQuery(ctx, "summary")
	return summary, nil
}

// Growth returns the year-over-year growth series for a region. A region
// with a single year yields an empty series, not an error.
func (s *DashboardService) Growth(ctx context.Context, region string) ([]domain.GrowthPoint, error) {
	table, err := s.provider.Table(ctx)
	if err != nil {
		return nil, err
	}
	if !table.HasRegion(region) {
		return nil, ErrRegionNotFound
	}

	s.countQuery(ctx, "growth")
	points := analytics.YoYGrowth(table, region)
	if points == nil {
		points = []domain.GrowthPoint{}
	}
	return points, nil
}

// MapData returns the raw geojson boundaries for the choropleth view.
func (s *DashboardService) MapData(ctx context.Context) (json.RawMessage, error) {
	raw, err := dataset.LoadGeoJSON(ctx, s.logger, s.geoPath)
	if errors.Is(err, dataset.ErrGeoDataUnavailable) {
		s.logger.WarnContext(ctx, "map view disabled, boundaries unavailable",
			slog.String("path", s.geoPath))
		return nil, ErrGeoUnavailable
	}
	if err != nil {
		return nil, err
	}
	s.countQuery(ctx, "map")
	return raw, nil
}

// Reload forces a re-parse of the source workbook and notifies connected
// clients on success. A failed reload keeps the previous table.
func (s *DashboardService) Reload(ctx context.Context) (ReloadResult, error) {
	table, err := s.provider.Reload(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "reload failed",
			slog.String("source", s.provider.Source()),
			slog.String("error", err.Error()))
		return ReloadResult{}, err
	}

	result := ReloadResult{
		Source:     s.provider.Source(),
		Records:    len(table),
		Regions:    len(table.Regions()),
		Years:      len(table.Years()),
		ReloadedAt: time.Now().UTC(),
	}

	if s.metrics != nil {
		s.metrics.ReloadsTotal.Add(ctx, 1)
		s.metrics.RecordsLoaded.Record(ctx, int64(result.Records))
	}
	if s.notifier != nil {
		s.notifier.BroadcastDataUpdate(result)
	}

	s.logger.InfoContext(ctx, "sales table reloaded",
		slog.Int("records", result.Records),
		slog.Int("regions", result.Regions),
		slog.Int("years", result.Years))
	return result, nil
}

// Table exposes the current long table for exporters.
func (s *DashboardService) Table(ctx context.Context) (domain.LongTable, error) {
	return s.provider.Table(ctx)
}

func (s *DashboardService) tableWithYear(ctx context.Context, year int) (domain.LongTable, error) {
	table, err := s.provider.Table(ctx)
	if err != nil {
		return nil, err
	}
	if !table.HasYear(year) {
		return nil, ErrYearNotFound
	}
	return table, nil
}

func (s *DashboardService) countQuery(ctx context.Context, query string) {
	if s.metrics == nil {
		return
	}
	s.metrics.QueriesTotal.Add(ctx, 1, infrastructure.WithQueryAttr(query))
}
