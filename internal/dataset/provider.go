package dataset

import (
	"context"
	"log/slog"
	"sync"

	"petrodash/pkg/contracts/domain"
)

// TableProvider supplies the loaded long table. The interface exists so the
// service layer depends on an injected provider instead of an ambient
// module-level cache.
type TableProvider interface {
	// Table returns the long table, parsing the source on first use.
	Table(ctx context.Context) (domain.LongTable, error)
	// Reload forces a re-parse of the source.
	Reload(ctx context.Context) (domain.LongTable, error)
	// Source identifies the backing spreadsheet.
	Source() string
}

// CachingProvider memoizes one parse per source path. The table is immutable
// once loaded, so concurrent readers need no further synchronization.
type CachingProvider struct {
	loader *Loader
	source string
	logger *slog.Logger

	mu     sync.RWMutex
	table  domain.LongTable
	loaded bool
}

// NewCachingProvider creates a provider for the given workbook path.
func NewCachingProvider(loader *Loader, source string, logger *slog.Logger) *CachingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingProvider{
		loader: loader,
		source: source,
		logger: logger.With(slog.String("component", "dataset.provider")),
	}
}

// Table returns the memoized long table, parsing the workbook on first call.
// Parse failures are not cached so a later call can retry.
func (p *CachingProvider) Table(ctx context.Context) (domain.LongTable, error) {
	p.mu.RLock()
	if p.loaded {
		table := p.table
		p.mu.RUnlock()
		return table, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.table, nil
	}

	table, err := p.loader.ParseWorkbook(ctx, p.source)
	if err != nil {
		return nil, err
	}

	p.table = table
	p.loaded = true
	p.logger.InfoContext(ctx, "sales table cached",
		slog.String("source", p.source),
		slog.Int("record_count", len(table)))
	return table, nil
}

// Reload re-parses the source. On failure the previously cached table is
// kept so readers keep working with the last good data.
func (p *CachingProvider) Reload(ctx context.Context) (domain.LongTable, error) {
	table, err := p.loader.ParseWorkbook(ctx, p.source)
	if err != nil {
		p.logger.ErrorContext(ctx, "reload failed, keeping cached table",
			slog.String("source", p.source),
			slog.String("error", err.Error()))
		return nil, err
	}

	p.mu.Lock()
	p.table = table
	p.loaded = true
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "sales table reloaded",
		slog.String("source", p.source),
		slog.Int("record_count", len(table)))
	return table, nil
}

// Source returns the backing workbook path.
func (p *CachingProvider) Source() string {
	return p.source
}

// StaticProvider serves a fixed table. It is used by tests and by the report
// generator after a one-shot parse.
type StaticProvider struct {
	table domain.LongTable
}

// NewStaticProvider wraps an already-loaded table.
func NewStaticProvider(table domain.LongTable) *StaticProvider {
	return &StaticProvider{table: table}
}

// Table returns the wrapped table.
func (p *StaticProvider) Table(context.Context) (domain.LongTable, error) {
	return p.table, nil
}

// Reload is a no-op for a static table.
func (p *StaticProvider) Reload(context.Context) (domain.LongTable, error) {
	return p.table, nil
}

// Source identifies the provider as in-memory.
func (p *StaticProvider) Source() string {
	return "static"
}
