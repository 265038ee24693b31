package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"petrodash/internal/dataset"
	apierrors "petrodash/internal/errors"
	"petrodash/internal/services"
)

// DashboardHandler serves the dashboard query endpoints with RFC 7807 errors.
type DashboardHandler struct {
	service      DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/years", h.GetYears)
	r.Get("/regions", h.GetRegions)
	r.Get("/sales/top", h.GetTopSales)
	r.Get("/sales/bottom", h.GetBottomSales)
	r.Get("/map", h.GetMap)
	r.Post("/reload", h.Reload)

	r.Route("/regions/{region}", func(r chi.Router) {
		r.Use(h.RegionCtx)
		r.Get("/summary", h.GetSummary)
		r.Get("/growth", h.GetGrowth)
	})

	return r
}

// RegionCtx rejects requests with an empty region parameter.
func (h *DashboardHandler) RegionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "region") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("region", "Region name is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetYears handles GET /api/dashboard/years.
func (h *DashboardHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"years": years})
}

// GetRegions handles GET /api/dashboard/regions.
func (h *DashboardHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"regions": regions})
}

// rankingParams are the query parameters for the top/bottom endpoints.
type rankingParams struct {
	Year int `validate:"required,min=1900,max=2200"`
	K    int `validate:"min=1,max=10"`
}

// GetTopSales handles GET /api/dashboard/sales/top?year=&k=.
func (h *DashboardHandler) GetTopSales(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseRanking(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	results, err := h.service.TopSales(r.Context(), params.Year, params.K)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"year":    params.Year,
		"k":       params.K,
		"order":   "top",
		"results": results,
	})
}

// GetBottomSales handles GET /api/dashboard/sales/bottom?year=&k=.
func (h *DashboardHandler) GetBottomSales(w http.ResponseWriter, r *http.Request) {
	params, err := h.parseRanking(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	results, err := h.service.BottomSales(r.Context(), params.Year, params.K)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"year":    params.Year,
		"k":       params.K,
		"order":   "bottom",
		"results": results,
	})
}

// GetSummary handles GET /api/dashboard/regions/{region}/summary?year=.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")

	year, err := h.parseYear(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", err.Error()))
		return
	}

	summary, err := h.service.Summary(r.Context(), region, year)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"region":  region,
		"year":    year,
		"summary": summary,
	})
}

// GetGrowth handles GET /api/dashboard/regions/{region}/growth.
func (h *DashboardHandler) GetGrowth(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")

	points, err := h.service.Growth(r.Context(), region)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"region": region,
		"growth": points,
	})
}

// GetMap handles GET /api/dashboard/map.
func (h *DashboardHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	raw, err := h.service.MapData(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// Reload handles POST /api/dashboard/reload.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Reload(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

// parseRanking validates the year/k query parameters. k defaults to the
// service default and is bounded 1..MaxK.
func (h *DashboardHandler) parseRanking(r *http.Request) (rankingParams, error) {
	return parseRankingParams(h.validate, r, h.service.DefaultK(), h.service.MaxK())
}

func parseRankingParams(validate *validator.Validate, r *http.Request, defaultK, maxK int) (rankingParams, error) {
	params := rankingParams{K: defaultK}

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return params, fmt.Errorf("year query parameter is required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return params, fmt.Errorf("year must be an integer")
	}
	params.Year = year

	if kStr := r.URL.Query().Get("k"); kStr != "" {
		k, err := strconv.Atoi(kStr)
		if err != nil {
			return params, fmt.Errorf("k must be an integer")
		}
		params.K = k
	}

	if err := validate.Struct(params); err != nil {
		return params, fmt.Errorf("year must be a plausible year and k between 1 and %d", maxK)
	}
	return params, nil
}

func (h *DashboardHandler) parseYear(r *http.Request) (int, error) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return 0, fmt.Errorf("year query parameter is required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, fmt.Errorf("year must be an integer")
	}
	return year, nil
}

// serviceError maps service sentinels onto the RFC 7807 taxonomy.
func (h *DashboardHandler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(h.errorHandler, w, r, err)
}

func writeServiceError(eh *apierrors.ErrorHandler, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrRegionNotFound):
		eh.HandleError(w, r, apierrors.ErrRegionNotFound)
	case errors.Is(err, services.ErrYearNotFound):
		eh.HandleError(w, r, apierrors.ErrYearNotFound)
	case errors.Is(err, services.ErrNoData):
		eh.HandleError(w, r, apierrors.ErrNoSalesData)
	case errors.Is(err, services.ErrGeoUnavailable):
		eh.HandleError(w, r, apierrors.ErrGeoUnavailable)
	case errors.Is(err, dataset.ErrDataUnavailable):
		eh.HandleError(w, r, apierrors.ErrDataUnavailable)
	default:
		eh.HandleError(w, r, err)
	}
}
