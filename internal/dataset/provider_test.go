package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrodash/pkg/contracts/domain"
)

func TestCachingProviderMemoizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"STATE/UT", "2015-16"},
		{"Goa", 100},
	})

	p := NewCachingProvider(NewLoader(testLogger()), path, testLogger())
	ctx := context.Background()

	first, err := p.Table(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Rewrite the source; the cached table must not change until Reload.
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"STATE/UT", "2015-16"},
		{"Goa", 999},
	})

	cached, err := p.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached, "Table is memoized per source")

	reloaded, err := p.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 999.0, reloaded[0].Sales)

	after, err := p.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, reloaded, after)
}

func TestCachingProviderRetriesAfterFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	p := NewCachingProvider(NewLoader(testLogger()), path, testLogger())
	ctx := context.Background()

	_, err := p.Table(ctx)
	require.ErrorIs(t, err, ErrDataUnavailable)

	// Create the file; the next call should parse it instead of caching
	// the earlier failure.
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"STATE/UT", "2015-16"},
		{"Goa", 100},
	})

	table, err := p.Table(ctx)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}

func TestCachingProviderReloadKeepsLastGoodTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"STATE/UT", "2015-16"},
		{"Goa", 100},
	})

	p := NewCachingProvider(NewLoader(testLogger()), path, testLogger())
	ctx := context.Background()

	first, err := p.Table(ctx)
	require.NoError(t, err)

	// Corrupt the source so reload fails.
	writeWorkbook(t, path, "Sheet1", [][]interface{}{
		{"Country", "2015-16"},
		{"India", 1},
	})

	_, err = p.Reload(ctx)
	require.ErrorIs(t, err, ErrDataUnavailable)

	cached, err := p.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, cached, "failed reload keeps last good table")
}

func TestStaticProvider(t *testing.T) {
	table := domain.LongTable{{Region: "Goa", Year: 2015, Sales: 450}}
	p := NewStaticProvider(table)

	got, err := p.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, table, got)
	assert.Equal(t, "static", p.Source())
}
