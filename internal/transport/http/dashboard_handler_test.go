package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "petrodash/internal/errors"
	"petrodash/internal/services"
	"petrodash/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockDashboardService mocks the service surface for handler tests.
type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Years(ctx context.Context) ([]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockDashboardService) Regions(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDashboardService) TopSales(ctx context.Context, year, k int) ([]domain.RegionSales, error) {
	args := m.Called(ctx, year, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RegionSales), args.Error(1)
}

func (m *mockDashboardService) BottomSales(ctx context.Context, year, k int) ([]domain.RegionSales, error) {
	args := m.Called(ctx, year, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RegionSales), args.Error(1)
}

func (m *mockDashboardService) Summary(ctx context.Context, region string, year int) (domain.RegionSummary, error) {
	args := m.Called(ctx, region, year)
	return args.Get(0).(domain.RegionSummary), args.Error(1)
}

func (m *mockDashboardService) Growth(ctx context.Context, region string) ([]domain.GrowthPoint, error) {
	args := m.Called(ctx, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GrowthPoint), args.Error(1)
}

func (m *mockDashboardService) MapData(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockDashboardService) Reload(ctx context.Context) (services.ReloadResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(services.ReloadResult), args.Error(1)
}

func (m *mockDashboardService) DefaultK() int { return 5 }
func (m *mockDashboardService) MaxK() int     { return 10 }

func newTestRouter(svc DashboardService) chi.Router {
	handler := NewDashboardHandler(svc, testLogger(), apierrors.NewErrorHandler(testLogger(), false))
	r := chi.NewRouter()
	r.Mount("/api/dashboard", handler.Routes())
	return r
}

func doRequest(t *testing.T, router chi.Router, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetYears(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Years", mock.Anything).Return([]int{2016, 2015, 2014}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/years")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{2016.0, 2015.0, 2014.0}, body["years"])
}

func TestGetRegions(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Regions", mock.Anything).Return([]string{"Goa", "Kerala"}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/regions")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"Goa", "Kerala"}, body["regions"])
}

func TestGetTopSales(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("TopSales", mock.Anything, 2015, 3).Return([]domain.RegionSales{
		{Region: "Kerala", Sales: 1300},
	}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/sales/top?year=2015&k=3")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "top", body["order"])
	assert.Equal(t, 3.0, body["k"])
	svc.AssertExpectations(t)
}

func TestGetTopSalesDefaultK(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("TopSales", mock.Anything, 2015, 5).Return([]domain.RegionSales{}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/sales/top?year=2015")

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetTopSalesValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing year", "/api/dashboard/sales/top"},
		{"bad year", "/api/dashboard/sales/top?year=abc"},
		{"k too small", "/api/dashboard/sales/top?year=2015&k=0"},
		{"k too large", "/api/dashboard/sales/top?year=2015&k=11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockDashboardService)
			rec := doRequest(t, newTestRouter(svc), http.MethodGet, tt.target)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
			svc.AssertNotCalled(t, "TopSales")
		})
	}
}

func TestGetBottomSalesYearNotFound(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("BottomSales", mock.Anything, 1999, 5).Return(nil, services.ErrYearNotFound)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/sales/bottom?year=1999")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/errors/data/year-not-found", body["type"])
}

func TestGetSummary(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Summary", mock.Anything, "Goa", 2015).Return(
		domain.RegionSummary{Current: 450, Average: 475, Max: 500, Min: 450}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/regions/Goa/summary?year=2015")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Goa", body["region"])
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, 450.0, summary["current"])
	assert.Equal(t, 475.0, summary["average"])
}

func TestGetSummaryRegionNotFound(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Summary", mock.Anything, "Atlantis", 2015).Return(
		domain.RegionSummary{}, services.ErrRegionNotFound)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/regions/Atlantis/summary?year=2015")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "/errors/data/region-not-found", body["type"])
}

func TestGetSummaryMissingYearParam(t *testing.T) {
	svc := new(mockDashboardService)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/regions/Goa/summary")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Summary")
}

func TestGetGrowth(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Growth", mock.Anything, "Goa").Return([]domain.GrowthPoint{
		{Year: 2015, Percent: -10},
	}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/regions/Goa/growth")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	points := body["growth"].([]interface{})
	require.Len(t, points, 1)
	point := points[0].(map[string]interface{})
	assert.Equal(t, 2015.0, point["year"])
	assert.Equal(t, -10.0, point["growth_percent"])
}

func TestGetMapUnavailable(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("MapData", mock.Anything).Return(nil, services.ErrGeoUnavailable)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/map")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMap(t *testing.T) {
	svc := new(mockDashboardService)
	geo := json.RawMessage(`{"type":"FeatureCollection","features":[]}`)
	svc.On("MapData", mock.Anything).Return(geo, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodGet, "/api/dashboard/map")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, string(geo), rec.Body.String())
}

func TestReload(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Reload", mock.Anything).Return(services.ReloadResult{
		Source:  "data/petroleum_sales.xlsx",
		Records: 35,
	}, nil)

	rec := doRequest(t, newTestRouter(svc), http.MethodPost, "/api/dashboard/reload")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 35.0, body["records"])
}
