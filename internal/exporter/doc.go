// Package exporter renders report artifacts from the long sales table:
// CSV exports for the offline report generator and PNG charts (ranking bars,
// growth lines) for both the report generator and the chart API endpoints.
package exporter
