package exporter

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"petrodash/pkg/contracts/domain"
)

// ChartRenderer draws the dashboard charts as PNG images.
type ChartRenderer struct {
	logger *slog.Logger
}

// NewChartRenderer creates a renderer.
func NewChartRenderer(logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{logger: logger.With(slog.String("component", "exporter.chart"))}
}

// RankingBar renders a top/bottom-K ranking as a bar chart and returns the
// PNG bytes. The ranking keeps the order it was computed in.
func (r *ChartRenderer) RankingBar(title string, ranking []domain.RegionSales) ([]byte, error) {
	if len(ranking) == 0 {
		return nil, fmt.Errorf("ranking bar %q: no data to plot", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Sales ('000 Metric Tonnes)"

	values := make(plotter.Values, len(ranking))
	labels := make([]string, len(ranking))
	for i, entry := range ranking {
		values[i] = entry.Sales
		labels[i] = entry.Region
	}

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("ranking bar %q: %w", title, err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	return r.renderPNG(p, 8*vg.Inch, 5*vg.Inch)
}

// GrowthLine renders a region's year-over-year growth series as a line chart
// and returns the PNG bytes.
func (r *ChartRenderer) GrowthLine(region string, points []domain.GrowthPoint) ([]byte, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("growth line for %s: no data to plot", region)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Year-over-Year Growth: %s", region)
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Growth (%)"

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Year)
		xys[i].Y = pt.Percent
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("growth line for %s: %w", region, err)
	}
	line.Width = vg.Points(2)

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("growth line for %s: %w", region, err)
	}
	scatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(plotter.NewGrid(), line, scatter)

	return r.renderPNG(p, 8*vg.Inch, 5*vg.Inch)
}

// SaveChart writes PNG bytes next to the other report artifacts, creating
// the directory as needed.
func (r *ChartRenderer) SaveChart(dir, name string, png []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create chart directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("write chart: %w", err)
	}

	r.logger.Info("chart written",
		slog.String("path", path),
		slog.Int("bytes", len(png)))
	return path, nil
}

func (r *ChartRenderer) renderPNG(p *plot.Plot, w, h vg.Length) ([]byte, error) {
	writer, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return buf.Bytes(), nil
}
