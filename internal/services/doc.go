// Package services implements the business logic layer between the HTTP
// handlers and the dataset/analytics packages.
//
// DashboardService answers the dashboard queries (selectors, rankings,
// summaries, growth, map data) over the cached long table and coordinates
// reloads: a successful re-parse updates the metrics and notifies the
// websocket hub. HealthService reports liveness, readiness (the table
// parses) and build identity.
//
// Services return sentinel errors (ErrRegionNotFound, ErrYearNotFound,
// ErrNoData, ErrGeoUnavailable) that the transport layer maps to RFC 7807
// problem responses.
package services
