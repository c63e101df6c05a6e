package model

import (
	"io"
	"log/slog"
	"sync"
)

// Diagnostics is the per-run context shared by every parser and stage.
// It remembers which unknown query types were already reported so each
// distinct string is warned about once per run.
type Diagnostics struct {
	logger *slog.Logger

	mu     sync.Mutex
	warned map[string]struct{}
}

// NewDiagnostics creates a run context logging through logger.
// A nil logger discards everything.
func NewDiagnostics(logger *slog.Logger) *Diagnostics {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Diagnostics{
		logger: logger,
		warned: make(map[string]struct{}),
	}
}

// Logger returns the diagnostic logger
func (d *Diagnostics) Logger() *slog.Logger {
	return d.logger
}

// WarnUnknownQueryType logs raw the first time it is seen and reports whether it did
func (d *Diagnostics) WarnUnknownQueryType(raw string) bool {
	d.mu.Lock()
	_, seen := d.warned[raw]
	if !seen {
		d.warned[raw] = struct{}{}
	}
	d.mu.Unlock()

	if seen {
		return false
	}
	d.logger.Warn("unknown query type", "raw", raw)
	return true
}

// MalformedLine reports a line that could not be parsed
func (d *Diagnostics) MalformedLine(file string, line int, reason string) {
	d.logger.Warn("malformed line", "file", file, "line", line, "reason", reason)
}
