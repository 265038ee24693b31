// Command report generates the offline dashboard artifacts from the sales
// spreadsheet: the long table and per-region summaries as CSV, a summary
// JSON document, and the ranking/growth charts as PNG.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"petrodash/internal/analytics"
	"petrodash/internal/config"
	"petrodash/internal/dataset"
	"petrodash/internal/exporter"
	"petrodash/internal/infrastructure"
	"petrodash/pkg/contracts/domain"
)

func main() {
	input := flag.String("input", "", "path to the sales spreadsheet (defaults to the configured sales file)")
	outDir := flag.String("out", "", "output directory (defaults to the configured output dir)")
	year := flag.Int("year", 0, "ranking year (defaults to the most recent year in the data)")
	k := flag.Int("k", 5, "ranking size")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *input == "" {
		*input = cfg.GetSalesFile()
	}
	if *outDir == "" {
		*outDir = cfg.GetOutputDir()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, logger, *input, *outDir, *year, *k); err != nil {
		logger.Error("report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, input, outDir string, year, k int) error {
	loader := dataset.NewLoader(logger)
	table, err := loader.ParseWorkbook(ctx, input)
	if err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	years := table.Years()
	if len(years) == 0 {
		return fmt.Errorf("no usable records in %s", input)
	}
	if year == 0 {
		year = years[0]
	}

	logger.Info("generating report",
		slog.String("input", input),
		slog.String("out", outDir),
		slog.Int("records", len(table)),
		slog.Int("year", year),
		slog.Int("k", k))

	csvWriter := exporter.NewCSVWriter(outDir, logger)
	renderer := exporter.NewChartRenderer(logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := csvWriter.WriteLongTable("sales_long.csv", table)
		return err
	})

	g.Go(func() error {
		rows := summaryRows(table, year)
		if _, err := csvWriter.WriteSummaries("region_summaries.csv", rows); err != nil {
			return err
		}
		return writeSummaryJSON(outDir, year, rows)
	})

	g.Go(func() error {
		png, err := renderer.RankingBar(
			fmt.Sprintf("Top %d Regions by Sales, %d", k, year),
			analytics.TopK(table, year, k))
		if err != nil {
			return err
		}
		_, err = renderer.SaveChart(outDir, "top_regions.png", png)
		return err
	})

	g.Go(func() error {
		png, err := renderer.RankingBar(
			fmt.Sprintf("Bottom %d Regions by Sales, %d", k, year),
			analytics.BottomK(table, year, k))
		if err != nil {
			return err
		}
		_, err = renderer.SaveChart(outDir, "bottom_regions.png", png)
		return err
	})

	g.Go(func() error {
		return writeGrowthCharts(renderer, table, outDir, year, k)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("report complete", slog.String("out", outDir))
	return nil
}

// summaryRows computes a summary for every region that has a value at the
// ranking year. Regions without one are left out rather than zero-filled.
func summaryRows(table domain.LongTable, year int) []exporter.RegionSummaryRow {
	var rows []exporter.RegionSummaryRow
	for _, region := range table.Regions() {
		summary, err := analytics.Summary(table, region, year)
		if err != nil {
			continue
		}
		rows = append(rows, exporter.RegionSummaryRow{Region: region, Summary: summary})
	}
	return rows
}

func writeSummaryJSON(outDir string, year int, rows []exporter.RegionSummaryRow) error {
	doc := map[string]interface{}{
		"year":         year,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"regions":      map[string]domain.RegionSummary{},
	}
	regions := doc["regions"].(map[string]domain.RegionSummary)
	for _, row := range rows {
		regions[row.Region] = row.Summary
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary json: %w", err)
	}
	return os.WriteFile(filepath.Join(outDir, "region_summaries.json"), data, 0644)
}

// writeGrowthCharts renders a growth line for each of the top-k regions of
// the ranking year.
func writeGrowthCharts(renderer *exporter.ChartRenderer, table domain.LongTable, outDir string, year, k int) error {
	for _, entry := range analytics.TopK(table, year, k) {
		points := analytics.YoYGrowth(table, entry.Region)
		if len(points) == 0 {
			continue
		}
		png, err := renderer.GrowthLine(entry.Region, points)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("growth_%s.png", sanitize(entry.Region))
		if _, err := renderer.SaveChart(filepath.Join(outDir, "growth"), name, png); err != nil {
			return err
		}
	}
	return nil
}

func sanitize(region string) string {
	out := make([]rune, 0, len(region))
	for _, r := range region {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
