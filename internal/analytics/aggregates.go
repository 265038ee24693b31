package analytics

import (
	"errors"
	"sort"

	"petrodash/pkg/contracts/domain"
)

// ErrNoData indicates a region has no sales value for the requested year.
// This is distinct from a zero value: zero is a valid sales figure.
var ErrNoData = errors.New("no sales data for region and year")

// TopK returns the k regions with the highest sales in the given year,
// descending. Ties keep the table's source order (stable sort). k caps the
// result: fewer regions than k is not an error.
func TopK(table domain.LongTable, year, k int) []domain.RegionSales {
	ranked := rankForYear(table, year)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Sales > ranked[j].Sales
	})
	return truncate(ranked, k)
}

// BottomK returns the k regions with the lowest sales in the given year,
// ascending, with the same tie-break and capping rules as TopK.
func BottomK(table domain.LongTable, year, k int) []domain.RegionSales {
	ranked := rankForYear(table, year)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Sales < ranked[j].Sales
	})
	return truncate(ranked, k)
}

// Summary computes the four headline metrics for a region. Current is the
// value at currentYear and fails with ErrNoData when the region has no record
// for that year; Average, Max and Min cover every year the region has data
// for, ignoring absent years.
func Summary(table domain.LongTable, region string, currentYear int) (domain.RegionSummary, error) {
	series := table.ForRegion(region)
	if len(series) == 0 {
		return domain.RegionSummary{}, ErrNoData
	}

	var summary domain.RegionSummary
	current, found := 0.0, false
	sum := 0.0
	summary.Max = series[0].Sales
	summary.Min = series[0].Sales

	for _, rec := range series {
		if rec.Year == currentYear {
			current, found = rec.Sales, true
		}
		sum += rec.Sales
		if rec.Sales > summary.Max {
			summary.Max = rec.Sales
		}
		if rec.Sales < summary.Min {
			summary.Min = rec.Sales
		}
	}

	if !found {
		return domain.RegionSummary{}, ErrNoData
	}

	summary.Current = current
	summary.Average = sum / float64(len(series))
	return summary, nil
}

// YoYGrowth computes the percent change between consecutive points of the
// region's own year-ordered series. The earliest year has no predecessor and
// is omitted. A gap in the source years is bridged: growth is computed
// between the two present years on either side of the gap, matching a
// pct_change over the region's filtered series.
func YoYGrowth(table domain.LongTable, region string) []domain.GrowthPoint {
	series := table.ForRegion(region)
	if len(series) < 2 {
		return nil
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})

	points := make([]domain.GrowthPoint, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].Sales
		if prev == 0 {
			// Division by zero: growth from a zero base is undefined,
			// skip the boundary like an absent year.
			continue
		}
		points = append(points, domain.GrowthPoint{
			Year:    series[i].Year,
			Percent: (series[i].Sales - prev) / prev * 100,
		})
	}
	return points
}

// rankForYear collects the (region, sales) pairs for one year in table order.
func rankForYear(table domain.LongTable, year int) []domain.RegionSales {
	var ranked []domain.RegionSales
	for _, rec := range table {
		if rec.Year == year {
			ranked = append(ranked, domain.RegionSales{Region: rec.Region, Sales: rec.Sales})
		}
	}
	return ranked
}

func truncate(ranked []domain.RegionSales, k int) []domain.RegionSales {
	if k < 0 {
		k = 0
	}
	if len(ranked) > k {
		return ranked[:k]
	}
	return ranked
}
