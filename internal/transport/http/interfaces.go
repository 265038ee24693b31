package http

import (
	"context"
	"encoding/json"

	"petrodash/internal/services"
	"petrodash/pkg/contracts/domain"
)

// DashboardService is the service surface the dashboard handler depends on.
// Defined here so handler tests can mock it.
type DashboardService interface {
	Years(ctx context.Context) ([]int, error)
	Regions(ctx context.Context) ([]string, error)
	TopSales(ctx context.Context, year, k int) ([]domain.RegionSales, error)
	BottomSales(ctx context.Context, year, k int) ([]domain.RegionSales, error)
	Summary(ctx context.Context, region string, year int) (domain.RegionSummary, error)
	Growth(ctx context.Context, region string) ([]domain.GrowthPoint, error)
	MapData(ctx context.Context) (json.RawMessage, error)
	Reload(ctx context.Context) (services.ReloadResult, error)
	DefaultK() int
	MaxK() int
}

// HealthService is the service surface the health handler depends on.
type HealthService interface {
	Check(ctx context.Context) services.HealthStatus
	Ready(ctx context.Context) error
	Version() map[string]string
}
