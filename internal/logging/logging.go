// Package logging builds the hclog loggers shared by the CLI and the
// application services.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns a logger named servicegrid writing to out at the given
// level name (trace, debug, info, warn, error, off). Unknown names fall
// back to info. A nil out writes to stderr.
func New(level string, out io.Writer) hclog.Logger {
	if out == nil {
		out = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "servicegrid",
		Level:  lvl,
		Output: out,
	})
}
