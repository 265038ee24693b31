package services

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"petrodash/internal/dataset"
)

// HealthStatus is the health endpoint response body.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// HubStats is implemented by the websocket hub.
type HubStats interface {
	Stats() map[string]int64
}

// HealthService reports liveness and readiness. Readiness means the sales
// table parses from the configured source.
type HealthService struct {
	version   string
	buildTime string
	provider  dataset.TableProvider
	hub       HubStats
	startTime time.Time
	logger    *slog.Logger
}

// NewHealthService wires the health checks. hub may be nil.
func NewHealthService(version, buildTime string, provider dataset.TableProvider, hub HubStats, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		provider:  provider,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check reports overall health: degraded when the sales data is unavailable,
// healthy otherwise.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]interface{}{},
	}

	table, err := s.provider.Table(ctx)
	switch {
	case errors.Is(err, dataset.ErrDataUnavailable):
		status.Status = "degraded"
		status.Services["dataset"] = map[string]interface{}{
			"status": "unavailable",
			"source": s.provider.Source(),
			"error":  err.Error(),
		}
	case err != nil:
		status.Status = "degraded"
		status.Services["dataset"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	default:
		status.Services["dataset"] = map[string]interface{}{
			"status":  "ok",
			"source":  s.provider.Source(),
			"records": len(table),
		}
	}

	if s.hub != nil {
		status.Services["websocket"] = s.hub.Stats()
	}

	return status
}

// Ready reports whether the service can answer dashboard queries.
func (s *HealthService) Ready(ctx context.Context) error {
	_, err := s.provider.Table(ctx)
	return err
}

// Version reports the build identity.
func (s *HealthService) Version() map[string]string {
	v := map[string]string{"version": s.version}
	if s.buildTime != "" {
		v["build_time"] = s.buildTime
	}
	return v
}
