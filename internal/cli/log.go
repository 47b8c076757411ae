package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled logs with short clock timestamps. Debug output
// also reports the calling file.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    level <= log.DebugLevel,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a command step took.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
