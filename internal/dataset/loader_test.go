package dataset

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"petrodash/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeWorkbook builds a minimal xlsx with the given header and data rows.
func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheet)

	for i, row := range rows {
		for j, val := range row {
			col, err := excelize.ColumnNumberToName(j + 1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, col+strconv.Itoa(i+1), val))
		}
	}

	require.NoError(t, f.SaveAs(path))
}

func TestParseWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Consumption", [][]interface{}{
		{"STATE/UT", " 2014-15 ", "2015-16", "2016-17"},
		{"Goa", 500, 450, ""},
		{"Northern Region", 9999, 9999, 9999},
		{"Region Total", 1, 2, 3},
		{"ALL INDIA", 4, 5, 6},
		{"Kerala", "1,234.5", "NA", 1300},
	})

	loader := NewLoader(testLogger())
	table, err := loader.ParseWorkbook(context.Background(), path)
	require.NoError(t, err)

	want := domain.LongTable{
		{Region: "Goa", Year: 2014, Sales: 500},
		{Region: "Goa", Year: 2015, Sales: 450},
		{Region: "Kerala", Year: 2014, Sales: 1234.5},
		{Region: "Kerala", Year: 2016, Sales: 1300},
	}
	assert.Equal(t, want, table, "aggregates excluded, absent cells dropped, deterministic order")
}

func TestParseWorkbookNeverEmitsAggregates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"STATE/UT", "2019-20"},
		{"Punjab", 100},
		{"NORTHERN REGION", 200},
		{"Grand Total", 300},
		{"all india", 400},
		{"Totally Real State", 500}, // contains "total"
	})

	loader := NewLoader(testLogger())
	table, err := loader.ParseWorkbook(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, table, 1)
	assert.Equal(t, "Punjab", table[0].Region)
}

func TestParseWorkbookSkipsTitleRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"Consumption of Petroleum Products"},
		{"(in metric tonnes)"},
		{"STATE/UT", "2020-21", "2021-22"},
		{"Bihar", 10, 20},
	})

	loader := NewLoader(testLogger())
	table, err := loader.ParseWorkbook(context.Background(), path)
	require.NoError(t, err)

	want := domain.LongTable{
		{Region: "Bihar", Year: 2020, Sales: 10},
		{Region: "Bihar", Year: 2021, Sales: 20},
	}
	assert.Equal(t, want, table)
}

func TestParseWorkbookMissingFile(t *testing.T) {
	loader := NewLoader(testLogger())
	_, err := loader.ParseWorkbook(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestParseWorkbookNoRegionColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"Country", "2014-15"},
		{"India", 100},
	})

	loader := NewLoader(testLogger())
	_, err := loader.ParseWorkbook(context.Background(), path)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestParseWorkbookBadYearLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"STATE/UT", "FY-2015"},
		{"Goa", 100},
	})

	loader := NewLoader(testLogger())
	_, err := loader.ParseWorkbook(context.Background(), path)
	assert.ErrorIs(t, err, ErrDataUnavailable, "non-4-digit year prefix is structural, not cell-level")
}

func TestParseSales(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"500", 500, true},
		{" 1,234.5 ", 1234.5, true},
		{"0", 0, true},
		{"", 0, false},
		{"NA", 0, false},
		{"-12", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseSales(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		if tt.wantOK {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
