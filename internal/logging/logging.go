// Package logging configures the diagnostic logger. User-facing wizard
// output goes through internal/ui; slog carries the debug detail that
// --verbose surfaces.
package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
)

// New builds the diagnostic logger. Verbose lowers the threshold to
// debug; otherwise only warnings and errors get through. Output goes
// to stderr so the generated-file listing on stdout stays parseable.
func New(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:   level,
		NoColor: color.NoColor,
	}))
}
