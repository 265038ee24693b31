package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "petrodash/internal/errors"
	"petrodash/internal/exporter"
)

// ChartsHandler serves server-rendered PNG charts for dashboards that embed
// images instead of drawing client-side.
type ChartsHandler struct {
	service      DashboardService
	renderer     *exporter.ChartRenderer
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewChartsHandler creates the handler.
func NewChartsHandler(service DashboardService, renderer *exporter.ChartRenderer, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChartsHandler {
	return &ChartsHandler{
		service:      service,
		renderer:     renderer,
		logger:       logger.With(slog.String("component", "charts_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the chart routes.
func (h *ChartsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/top", h.GetTopChart)
	r.Get("/bottom", h.GetBottomChart)
	r.Get("/growth", h.GetGrowthChart)
	return r
}

// GetTopChart handles GET /api/charts/top?year=&k=.
func (h *ChartsHandler) GetTopChart(w http.ResponseWriter, r *http.Request) {
	h.rankingChart(w, r, "top")
}

// GetBottomChart handles GET /api/charts/bottom?year=&k=.
func (h *ChartsHandler) GetBottomChart(w http.ResponseWriter, r *http.Request) {
	h.rankingChart(w, r, "bottom")
}

func (h *ChartsHandler) rankingChart(w http.ResponseWriter, r *http.Request, order string) {
	params, err := parseRankingParams(h.validate, r, h.service.DefaultK(), h.service.MaxK())
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("query", err.Error()))
		return
	}

	query := h.service.TopSales
	title := fmt.Sprintf("Top %d Regions by Sales, %d", params.K, params.Year)
	if order == "bottom" {
		query = h.service.BottomSales
		title = fmt.Sprintf("Bottom %d Regions by Sales, %d", params.K, params.Year)
	}

	ranking, err := query(r.Context(), params.Year, params.K)
	if err != nil {
		writeServiceError(h.errorHandler, w, r, err)
		return
	}

	png, err := h.renderer.RankingBar(title, ranking)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.servePNG(w, png)
}

// GetGrowthChart handles GET /api/charts/growth?region=.
func (h *ChartsHandler) GetGrowthChart(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("region", "region query parameter is required"))
		return
	}

	points, err := h.service.Growth(r.Context(), region)
	if err != nil {
		writeServiceError(h.errorHandler, w, r, err)
		return
	}
	if len(points) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoSalesData)
		return
	}

	png, err := h.renderer.GrowthLine(region, points)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.servePNG(w, png)
}

func (h *ChartsHandler) servePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
