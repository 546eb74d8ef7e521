/*package logs hands out the named loggers used by the rest of lhetruth and
lets the command change their verbosity and destination in one place.
*/
package logs

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	loggers = map[string]*logrus.Logger{}
	level   = logrus.WarnLevel
	out     io.Writer = os.Stderr
)

// NamedLogger returns the logger for the given package name, creating it
// if needed.
func NamedLogger(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok { return l }

	l := &logrus.Logger{
		Out: out,
		Formatter: &CustomTextFormatter{
			Name: name,
			TextFormatter: logrus.TextFormatter{
				DisableTimestamp: true,
				CallerPrettyfier: func(*runtime.Frame) (string, string) {
					return "", ""
				},
			},
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
		ReportCaller: true,
	}
	loggers[name] = l
	return l
}

// SetVerbose switches every logger between printing Info messages and
// printing only warnings and errors.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()

	level = logrus.WarnLevel
	if verbose { level = logrus.InfoLevel }
	for _, l := range loggers { l.SetLevel(level) }
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
	for _, l := range loggers { l.SetOutput(w) }
}

// CustomTextFormatter prefixes messages with the logger name and the file
// and line that produced them.
type CustomTextFormatter struct {
	logrus.TextFormatter
	Name string
}

// Format renders a single log entry.
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Message = fmt.Sprintf(
			"[%s %-15s:%03d] %s", f.Name,
			path.Base(entry.Caller.File), entry.Caller.Line, entry.Message,
		)
	} else {
		entry.Message = fmt.Sprintf("[%s] %s", f.Name, entry.Message)
	}
	return f.TextFormatter.Format(entry)
}
