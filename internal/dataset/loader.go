package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"petrodash/pkg/contracts/domain"
)

// ErrDataUnavailable indicates the sales spreadsheet is missing or its
// overall shape could not be parsed. Cell-level garbage never produces this
// error; only structural failures do.
var ErrDataUnavailable = errors.New("sales data unavailable")

// aggregateMarkers are the case-insensitive substrings that identify
// aggregate rows in the source sheet. Those rows are sums of real regions and
// must never appear in the long table.
var aggregateMarkers = []string{"region", "total", "all india"}

// Loader parses the wide spreadsheet into a domain.LongTable.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a spreadsheet loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset.loader"))}
}

// ParseWorkbook reads the sales workbook and returns the long table.
// Output order is deterministic: source row order, then year-column order.
func (l *Loader) ParseWorkbook(ctx context.Context, path string) (domain.LongTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()

	rows, sheetName, err := l.findSalesSheet(f)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "found sales data sheet",
		slog.String("sheet_name", sheetName),
		slog.Int("total_rows", len(rows)))

	headerIdx, regionCol, err := findHeaderRow(rows)
	if err != nil {
		return nil, err
	}

	header := rows[headerIdx]
	yearCols, err := mapYearColumns(header, regionCol)
	if err != nil {
		return nil, err
	}

	var table domain.LongTable
	dropped := 0
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if regionCol >= len(row) {
			continue
		}

		region := strings.TrimSpace(row[regionCol])
		if region == "" {
			continue
		}
		if isAggregateRow(region) {
			l.logger.DebugContext(ctx, "skipping aggregate row",
				slog.String("label", region),
				slog.Int("row_number", i))
			continue
		}

		for _, yc := range yearCols {
			if yc.index >= len(row) {
				dropped++
				continue
			}
			sales, ok := parseSales(row[yc.index])
			if !ok {
				dropped++
				continue
			}
			table = append(table, domain.SalesRecord{
				Region: region,
				Year:   yc.year,
				Sales:  sales,
			})
		}
	}

	l.logger.InfoContext(ctx, "parsed sales workbook",
		slog.String("sheet_name", sheetName),
		slog.Int("record_count", len(table)),
		slog.Int("dropped_cells", dropped))

	return table, nil
}

// findSalesSheet probes the workbook for a sheet containing a region header.
func (l *Loader) findSalesSheet(f *excelize.File) ([][]string, string, error) {
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		if _, _, err := findHeaderRow(rows); err == nil {
			return rows, name, nil
		}
	}
	return nil, "", fmt.Errorf("%w: no sheet with a state/UT header column", ErrDataUnavailable)
}

// findHeaderRow locates the header row and the region-identifier column
// within it. Column labels are matched after whitespace trimming.
func findHeaderRow(rows [][]string) (rowIdx, colIdx int, err error) {
	// The header sits in the first handful of rows; title rows above it
	// never carry a state/UT label.
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		for j, cell := range rows[i] {
			label := strings.ToUpper(strings.TrimSpace(cell))
			if label == "STATE/UT" || label == "STATE/UTS" || label == "STATES/UTS" || label == "STATE" {
				return i, j, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: header row with region column not found", ErrDataUnavailable)
}

// yearColumn binds a spreadsheet column index to its parsed calendar year.
type yearColumn struct {
	index int
	year  int
}

// mapYearColumns derives the year for every non-region column. A label whose
// first four characters do not parse as an integer is a structural error:
// the sheet layout differs from what the loader is configured for.
func mapYearColumns(header []string, regionCol int) ([]yearColumn, error) {
	var cols []yearColumn
	for j, cell := range header {
		if j == regionCol {
			continue
		}
		label := strings.TrimSpace(cell)
		if label == "" {
			continue
		}
		if len(label) < 4 {
			return nil, fmt.Errorf("%w: year column label %q too short", ErrDataUnavailable, label)
		}
		year, err := strconv.Atoi(label[:4])
		if err != nil {
			return nil, fmt.Errorf("%w: year column label %q has no 4-digit prefix", ErrDataUnavailable, label)
		}
		cols = append(cols, yearColumn{index: j, year: year})
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no year columns found", ErrDataUnavailable)
	}
	return cols, nil
}

// isAggregateRow reports whether a region label names an aggregate
// ("Northern Region", "Region Total", "ALL INDIA") rather than a real region.
func isAggregateRow(label string) bool {
	lower := strings.ToLower(label)
	for _, marker := range aggregateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// parseSales coerces a sales cell to a float. Thousands separators are
// stripped. Empty or unparseable cells report ok=false and the record is
// dropped, never zero-filled.
func parseSales(cell string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		return 0, false
	}
	return v, true
}
