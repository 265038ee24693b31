package domain

import "sort"

// SalesRecord is one row of the long sales table: petroleum product sales for
// a single region in a single year, in metric tonnes.
type SalesRecord struct {
	Region string  `json:"region"`
	Year   int     `json:"year"`
	Sales  float64 `json:"sales"`
}

// LongTable is the reshaped (region, year, sales) record set produced from the
// wide source spreadsheet. The table is immutable once loaded; all derived
// views are computed on demand.
type LongTable []SalesRecord

// RegionSales pairs a region with its sales figure for one year. It is the
// element type of top-K and bottom-K rankings.
type RegionSales struct {
	Region string  `json:"region"`
	Sales  float64 `json:"sales"`
}

// RegionSummary holds the four headline metrics for a selected region.
// Current is the sales value at the selected year; Average, Max and Min are
// computed over every year the region has data for.
type RegionSummary struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// GrowthPoint is one point of a region's year-over-year growth series.
// Percent is the change relative to the previous point in the region's own
// year-ordered series.
type GrowthPoint struct {
	Year    int     `json:"year"`
	Percent float64 `json:"growth_percent"`
}

// Years returns the distinct years present in the table, most recent first.
func (t LongTable) Years() []int {
	seen := make(map[int]struct{})
	var years []int
	for _, rec := range t {
		if _, ok := seen[rec.Year]; !ok {
			seen[rec.Year] = struct{}{}
			years = append(years, rec.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Regions returns the distinct region names present in the table,
// alphabetically ordered.
func (t LongTable) Regions() []string {
	seen := make(map[string]struct{})
	var regions []string
	for _, rec := range t {
		if _, ok := seen[rec.Region]; !ok {
			seen[rec.Region] = struct{}{}
			regions = append(regions, rec.Region)
		}
	}
	sort.Strings(regions)
	return regions
}

// ForYear returns the records for a single year, preserving table order.
func (t LongTable) ForYear(year int) LongTable {
	var out LongTable
	for _, rec := range t {
		if rec.Year == year {
			out = append(out, rec)
		}
	}
	return out
}

// ForRegion returns the records for a single region, preserving table order.
func (t LongTable) ForRegion(region string) LongTable {
	var out LongTable
	for _, rec := range t {
		if rec.Region == region {
			out = append(out, rec)
		}
	}
	return out
}

// HasRegion reports whether the table contains any record for region.
func (t LongTable) HasRegion(region string) bool {
	for _, rec := range t {
		if rec.Region == region {
			return true
		}
	}
	return false
}

// HasYear reports whether the table contains any record for year.
func (t LongTable) HasYear(year int) bool {
	for _, rec := range t {
		if rec.Year == year {
			return true
		}
	}
	return false
}
