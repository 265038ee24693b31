// Command fetch downloads the petroleum consumption spreadsheet from the
// Petroleum Planning & Analysis Cell site. The download links are rendered
// client-side, so a headless browser collects them before a plain HTTP GET
// fetches the file itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"petrodash/internal/config"
	"petrodash/internal/infrastructure"
)

const consumptionURL = "https://ppac.gov.in/consumption/products-wise"

func main() {
	out := flag.String("out", "", "destination file (defaults to the configured sales file)")
	pageURL := flag.String("url", consumptionURL, "PPAC consumption page to scan for spreadsheet links")
	timeout := flag.Duration("timeout", 3*time.Minute, "overall timeout")
	headless := flag.Bool("headless", true, "run the browser headless")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := infrastructure.MustInitializeLogger(cfg.Logging)
	defer infrastructure.CloseLogFile()

	if *out == "" {
		*out = cfg.GetSalesFile()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := fetch(ctx, logger, *pageURL, *out, *headless); err != nil {
		logger.Error("fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func fetch(ctx context.Context, logger *slog.Logger, pageURL, out string, headless bool) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	logger.Info("scanning for spreadsheet links", slog.String("url", pageURL))

	var hrefs []string
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`Array.from(document.querySelectorAll('a[href]'))
			.map(a => a.href)
			.filter(h => h.toLowerCase().endsWith('.xlsx') || h.toLowerCase().endsWith('.xls'))`, &hrefs),
	); err != nil {
		return fmt.Errorf("scan %s: %w", pageURL, err)
	}

	href := pickSalesLink(hrefs)
	if href == "" {
		return fmt.Errorf("no spreadsheet links found on %s", pageURL)
	}

	logger.Info("downloading spreadsheet",
		slog.String("href", href),
		slog.String("out", out))
	return download(ctx, href, out)
}

// pickSalesLink prefers links whose name mentions consumption or sales;
// otherwise the first spreadsheet on the page wins.
func pickSalesLink(hrefs []string) string {
	for _, href := range hrefs {
		lower := strings.ToLower(href)
		if strings.Contains(lower, "consumption") || strings.Contains(lower, "sale") {
			return href
		}
	}
	if len(hrefs) > 0 {
		return hrefs[0]
	}
	return ""
}

func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	// Write to a temp file first so a failed download never clobbers the
	// spreadsheet the server is reading.
	tmp := dest + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
