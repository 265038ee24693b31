package errors

import (
	"io"
	"log/slog"
)

// testLogger returns a quiet logger for tests
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
