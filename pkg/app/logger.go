package app

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/flemzord/tgupload/internal/security"
)

// NewLogger returns a tint logger writing to w whose records pass through
// the redactor. Colors are enabled only when w is a terminal.
func NewLogger(w io.Writer, level slog.Level, redactor *security.Redactor) *slog.Logger {
	inner := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
	})
	return slog.New(security.NewRedactingHandler(inner, redactor))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
