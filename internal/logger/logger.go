package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Init initializes the default logger. Without debug only warnings and
// errors are shown.
func Init(debug, noColor bool) {
	log.SetDefault(New(os.Stderr, debug, noColor))
}

// New builds a logger with the application's options writing to w.
func New(w io.Writer, debug, noColor bool) *log.Logger {
	l := log.NewWithOptions(io.MultiWriter(w),
		log.Options{
			ReportCaller:    true,
			ReportTimestamp: false,
			TimeFormat:      time.RFC3339,
			Prefix:          "PSEUDOTRACE",
			Level:           log.WarnLevel,
		})

	if debug {
		l.SetLevel(log.DebugLevel)
	}

	l.SetColorProfile(termenv.ANSI256)
	if noColor {
		l.SetColorProfile(termenv.Ascii)
	}

	return l
}

// ParseLevel maps a configured level name onto a log level, falling back to
// warn for unknown names.
func ParseLevel(name string) log.Level {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}
