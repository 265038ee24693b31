package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"petrodash/pkg/contracts/domain"
)

// CSVWriter exports the long table and per-region summaries as CSV files
// under a report directory.
type CSVWriter struct {
	dir    string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at dir.
func NewCSVWriter(dir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		dir:    dir,
		logger: logger.With(slog.String("component", "exporter.csv")),
	}
}

// WriteLongTable writes the full (region, year, sales) table.
func (w *CSVWriter) WriteLongTable(name string, table domain.LongTable) (string, error) {
	records := make([][]string, 0, len(table))
	for _, rec := range table {
		records = append(records, []string{
			rec.Region,
			strconv.Itoa(rec.Year),
			strconv.FormatFloat(rec.Sales, 'f', -1, 64),
		})
	}
	return w.write(name, []string{"region", "year", "sales"}, records)
}

// RegionSummaryRow pairs a region with its computed summary for export.
type RegionSummaryRow struct {
	Region  string
	Summary domain.RegionSummary
}

// WriteSummaries writes one row per region with the headline metrics.
func (w *CSVWriter) WriteSummaries(name string, rows []RegionSummaryRow) (string, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Region,
			formatFloat(row.Summary.Current),
			formatFloat(row.Summary.Average),
			formatFloat(row.Summary.Max),
			formatFloat(row.Summary.Min),
		})
	}
	return w.write(name, []string{"region", "current", "average", "max", "min"}, records)
}

// write creates the report directory, then writes headers and records with a
// UTF-8 BOM so Excel opens the file correctly.
func (w *CSVWriter) write(name string, headers []string, records [][]string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(w.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}

	w.logger.Info("csv written",
		slog.String("path", path),
		slog.Int("record_count", len(records)))
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
