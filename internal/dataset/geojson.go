package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrGeoDataUnavailable indicates the optional geographic boundaries file is
// missing or malformed. Callers recover by disabling the map feature; this is
// never fatal.
var ErrGeoDataUnavailable = errors.New("geo data unavailable")

// LoadGeoJSON reads the optional India boundaries document. The raw JSON is
// returned unparsed beyond validity checking; the frontend consumes it as-is.
func LoadGeoJSON(ctx context.Context, logger *slog.Logger, path string) (json.RawMessage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.WarnContext(ctx, "geojson file not available, map feature disabled",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: read %s: %v", ErrGeoDataUnavailable, path, err)
	}

	if !json.Valid(data) {
		logger.WarnContext(ctx, "geojson file is not valid JSON, map feature disabled",
			slog.String("path", path))
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrGeoDataUnavailable, path)
	}

	return json.RawMessage(data), nil
}
