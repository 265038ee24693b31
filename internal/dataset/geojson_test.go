package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "india.geojson")
	content := `{"type":"FeatureCollection","features":[]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	raw, err := LoadGeoJSON(context.Background(), testLogger(), path)
	require.NoError(t, err)
	assert.JSONEq(t, content, string(raw))
}

func TestLoadGeoJSONMissingFile(t *testing.T) {
	_, err := LoadGeoJSON(context.Background(), testLogger(), filepath.Join(t.TempDir(), "nope.geojson"))
	assert.ErrorIs(t, err, ErrGeoDataUnavailable)
}

func TestLoadGeoJSONInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "india.geojson")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadGeoJSON(context.Background(), testLogger(), path)
	assert.ErrorIs(t, err, ErrGeoDataUnavailable)
}
