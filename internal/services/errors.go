package services

import "errors"

// Dashboard service errors. Handlers map these to RFC 7807 problems.
var (
	// ErrRegionNotFound means the region label is not in the loaded table.
	ErrRegionNotFound = errors.New("region not found")

	// ErrYearNotFound means no region has a sales value for the year.
	ErrYearNotFound = errors.New("year not found")

	// ErrNoData means the region exists but carries no value for the
	// selected year. Distinct from a zero sales figure.
	ErrNoData = errors.New("no sales data for region and year")

	// ErrGeoUnavailable means the boundaries file is absent or invalid,
	// so the map view is disabled.
	ErrGeoUnavailable = errors.New("geographic boundaries unavailable")

	// ErrInvalidInput covers malformed query parameters.
	ErrInvalidInput = errors.New("invalid input")
)
