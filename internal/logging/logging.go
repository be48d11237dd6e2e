// ABOUTME: Structured logger construction for mdpad.
// ABOUTME: Wraps charmbracelet/log with the app's prefix and level parsing.

package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLevel keeps CLI stdout quiet unless something goes wrong.
const DefaultLevel = "warn"

// ParseLevel maps a level name to a log.Level. Blank means DefaultLevel.
func ParseLevel(level string) (log.Level, error) {
	if strings.TrimSpace(level) == "" {
		level = DefaultLevel
	}
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return lvl, nil
}

// New returns a logger writing to w at the named level.
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "mdpad",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

// Discard returns a logger that drops everything; used as the default for
// library packages and in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
