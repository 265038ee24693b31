package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrodash/pkg/contracts/domain"
)

// testTable covers four regions over three years with one gap (Goa 2016).
func testTable() domain.LongTable {
	return domain.LongTable{
		{Region: "Goa", Year: 2014, Sales: 500},
		{Region: "Goa", Year: 2015, Sales: 450},
		{Region: "Kerala", Year: 2014, Sales: 1200},
		{Region: "Kerala", Year: 2015, Sales: 1300},
		{Region: "Kerala", Year: 2016, Sales: 1250},
		{Region: "Punjab", Year: 2015, Sales: 800},
		{Region: "Punjab", Year: 2016, Sales: 900},
		{Region: "Sikkim", Year: 2015, Sales: 50},
	}
}

func TestTopK(t *testing.T) {
	got := TopK(testTable(), 2015, 2)

	want := []domain.RegionSales{
		{Region: "Kerala", Sales: 1300},
		{Region: "Punjab", Sales: 800},
	}
	assert.Equal(t, want, got)
}

func TestBottomK(t *testing.T) {
	got := BottomK(testTable(), 2015, 2)

	want := []domain.RegionSales{
		{Region: "Sikkim", Sales: 50},
		{Region: "Goa", Sales: 450},
	}
	assert.Equal(t, want, got)
}

func TestTopKCapsAtAvailableRegions(t *testing.T) {
	got := TopK(testTable(), 2015, 100)
	assert.Len(t, got, 4, "k is a cap, not an exact count")

	got = TopK(testTable(), 2014, 10)
	assert.Len(t, got, 2, "only regions with data for the year")
}

func TestTopKEmptyForUnknownYear(t *testing.T) {
	assert.Empty(t, TopK(testTable(), 1999, 5))
	assert.Empty(t, BottomK(testTable(), 1999, 5))
}

func TestTopKStableTieBreak(t *testing.T) {
	table := domain.LongTable{
		{Region: "Alpha", Year: 2020, Sales: 100},
		{Region: "Beta", Year: 2020, Sales: 100},
		{Region: "Gamma", Year: 2020, Sales: 100},
	}

	got := TopK(table, 2020, 3)
	want := []domain.RegionSales{
		{Region: "Alpha", Sales: 100},
		{Region: "Beta", Sales: 100},
		{Region: "Gamma", Sales: 100},
	}
	assert.Equal(t, want, got, "ties keep source order")

	assert.Equal(t, want, BottomK(table, 2020, 3))
}

func TestTopKOrderedDescending(t *testing.T) {
	got := TopK(testTable(), 2016, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Sales, got[i].Sales)
	}

	asc := BottomK(testTable(), 2016, 3)
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Sales, asc[i].Sales)
	}
}

func TestSummaryGoaExample(t *testing.T) {
	// Source row: Goa 2014-15=500, 2015-16=450, 2016-17 absent.
	table := domain.LongTable{
		{Region: "Goa", Year: 2014, Sales: 500},
		{Region: "Goa", Year: 2015, Sales: 450},
	}

	summary, err := Summary(table, "Goa", 2015)
	require.NoError(t, err)
	assert.Equal(t, domain.RegionSummary{
		Current: 450,
		Average: 475,
		Max:     500,
		Min:     450,
	}, summary)
}

func TestSummaryNoDataForYear(t *testing.T) {
	table := domain.LongTable{
		{Region: "Goa", Year: 2014, Sales: 500},
		{Region: "Goa", Year: 2015, Sales: 450},
	}

	_, err := Summary(table, "Goa", 2016)
	assert.ErrorIs(t, err, ErrNoData, "absent year is missing data, not zero")
}

func TestSummaryUnknownRegion(t *testing.T) {
	_, err := Summary(testTable(), "Atlantis", 2015)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestSummaryZeroIsValid(t *testing.T) {
	table := domain.LongTable{
		{Region: "Goa", Year: 2015, Sales: 0},
		{Region: "Goa", Year: 2016, Sales: 10},
	}

	summary, err := Summary(table, "Goa", 2015)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.Current)
	assert.Equal(t, 0.0, summary.Min)
}

func TestYoYGrowthGoaExample(t *testing.T) {
	table := domain.LongTable{
		{Region: "Goa", Year: 2014, Sales: 500},
		{Region: "Goa", Year: 2015, Sales: 450},
	}

	got := YoYGrowth(table, "Goa")
	require.Len(t, got, 1)
	assert.Equal(t, 2015, got[0].Year)
	assert.InDelta(t, -10.0, got[0].Percent, 1e-9)
}

func TestYoYGrowthOmitsEarliestYear(t *testing.T) {
	got := YoYGrowth(testTable(), "Kerala")
	require.Len(t, got, 2)
	assert.Equal(t, 2015, got[0].Year)
	assert.Equal(t, 2016, got[1].Year)
}

func TestYoYGrowthFiftyPercent(t *testing.T) {
	table := domain.LongTable{
		{Region: "Punjab", Year: 2014, Sales: 100},
		{Region: "Punjab", Year: 2015, Sales: 150},
	}

	got := YoYGrowth(table, "Punjab")
	require.Len(t, got, 1)
	assert.InDelta(t, 50.0, got[0].Percent, 1e-9)
}

func TestYoYGrowthBridgesGaps(t *testing.T) {
	// 2016 missing: growth 2015->2017 computed between the present years.
	table := domain.LongTable{
		{Region: "Goa", Year: 2015, Sales: 200},
		{Region: "Goa", Year: 2017, Sales: 300},
	}

	got := YoYGrowth(table, "Goa")
	require.Len(t, got, 1)
	assert.Equal(t, 2017, got[0].Year)
	assert.InDelta(t, 50.0, got[0].Percent, 1e-9)
}

func TestYoYGrowthUnsortedInput(t *testing.T) {
	table := domain.LongTable{
		{Region: "Goa", Year: 2016, Sales: 300},
		{Region: "Goa", Year: 2014, Sales: 100},
		{Region: "Goa", Year: 2015, Sales: 200},
	}

	got := YoYGrowth(table, "Goa")
	require.Len(t, got, 2)
	assert.Equal(t, 2015, got[0].Year)
	assert.InDelta(t, 100.0, got[0].Percent, 1e-9)
	assert.Equal(t, 2016, got[1].Year)
	assert.InDelta(t, 50.0, got[1].Percent, 1e-9)
}

func TestYoYGrowthSkipsZeroBase(t *testing.T) {
	table := domain.LongTable{
		{Region: "Goa", Year: 2014, Sales: 0},
		{Region: "Goa", Year: 2015, Sales: 100},
		{Region: "Goa", Year: 2016, Sales: 150},
	}

	got := YoYGrowth(table, "Goa")
	require.Len(t, got, 1)
	assert.Equal(t, 2016, got[0].Year)
}

func TestYoYGrowthSingleYear(t *testing.T) {
	assert.Nil(t, YoYGrowth(testTable(), "Sikkim"))
}
