// Package logx sets up the named loggers the scan manager writes
// through, generalizing lib/logger.py's get_logger(name, level): a
// logrus.Entry tagged with a "component" field instead of a bespoke
// LoggerAdapter, one line per event.
package logx

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// lineFormatter renders "[time] LEVEL: component | message", the same
// shape as the original "[%(asctime)s] %(levelname)s: %(module_name)s | %(message)s".
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	component, _ := e.Data["component"].(string)
	line := "[" + e.Time.Format("2006-01-02 15:04:05") + "] " + levelTag(e.Level) + ": " + component + " | " + e.Message + "\n"
	return []byte(line), nil
}

func levelTag(l logrus.Level) string {
	switch l {
	case logrus.ErrorLevel:
		return "ERROR"
	case logrus.WarnLevel:
		return "WARNING"
	case logrus.DebugLevel:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// base is the root logrus logger every named component derives from.
var base = func() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(lineFormatter{})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(os.Stderr)
	return l
}()

// SetOutput redirects every named logger, e.g. so the progress bar can
// reclaim the line before a log message is written.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// Named returns a logger tagged with component, mirroring the
// original's per-subsystem loggers ("MAIN", "SCAN", "URL").
func Named(component string) *logrus.Entry {
	return base.WithField("component", component)
}
