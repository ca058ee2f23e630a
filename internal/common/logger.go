package common

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Severity represents log message severity levels
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a level name from configuration to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "debug", "DEBUG":
		return SeverityDebug, nil
	case "info", "INFO", "":
		return SeverityInfo, nil
	case "warning", "warn", "WARNING", "WARN":
		return SeverityWarning, nil
	case "error", "ERROR":
		return SeverityError, nil
	}
	return SeverityInfo, fmt.Errorf("unknown log level %q", s)
}

func (s Severity) logrusLevel() log.Level {
	switch s {
	case SeverityDebug:
		return log.DebugLevel
	case SeverityWarning:
		return log.WarnLevel
	case SeverityError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Logger interface defines the logging contract for the debug session
type Logger interface {
	// Log logs a message with the specified severity
	Log(severity Severity, msg string)

	// Logf logs a formatted message with the specified severity
	Logf(severity Severity, format string, args ...interface{})

	// Error logs an error
	Error(err error)

	// Debug logs a debug message
	Debug(msg string)

	// Info logs an info message
	Info(msg string)

	// Warning logs a warning message
	Warning(msg string)
}

// StdLogger implements the Logger interface on top of logrus.
type StdLogger struct {
	entry    *log.Entry
	minLevel Severity
}

// NewStdLogger creates a new standard logger writing to stderr
func NewStdLogger(minLevel Severity) *StdLogger {
	return NewStdLoggerWithWriter(os.Stderr, minLevel)
}

// NewStdLoggerWithWriter creates a new standard logger with a custom writer
func NewStdLoggerWithWriter(w io.Writer, minLevel Severity) *StdLogger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(minLevel.logrusLevel())
	l.SetFormatter(&log.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})
	return &StdLogger{
		entry:    log.NewEntry(l),
		minLevel: minLevel,
	}
}

// WithComponent returns a logger tagging every message with the component name.
func (l *StdLogger) WithComponent(name string) *StdLogger {
	return &StdLogger{
		entry:    l.entry.WithField("component", name),
		minLevel: l.minLevel,
	}
}

// Log logs a message with the specified severity
func (l *StdLogger) Log(severity Severity, msg string) {
	if severity < l.minLevel {
		return
	}

	switch severity {
	case SeverityDebug:
		l.entry.Debug(msg)
	case SeverityInfo:
		l.entry.Info(msg)
	case SeverityWarning:
		l.entry.Warn(msg)
	case SeverityError:
		l.entry.Error(msg)
	}
}

// Logf logs a formatted message with the specified severity
func (l *StdLogger) Logf(severity Severity, format string, args ...interface{}) {
	if severity < l.minLevel {
		return
	}
	l.Log(severity, fmt.Sprintf(format, args...))
}

// Error logs an error
func (l *StdLogger) Error(err error) {
	if err != nil {
		l.Log(SeverityError, err.Error())
	}
}

// Debug logs a debug message
func (l *StdLogger) Debug(msg string) {
	l.Log(SeverityDebug, msg)
}

// Info logs an info message
func (l *StdLogger) Info(msg string) {
	l.Log(SeverityInfo, msg)
}

// Warning logs a warning message
func (l *StdLogger) Warning(msg string) {
	l.Log(SeverityWarning, msg)
}

// NoOpLogger is a logger that doesn't log anything
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-op logger
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

// Log does nothing
func (l *NoOpLogger) Log(severity Severity, msg string) {}

// Logf does nothing
func (l *NoOpLogger) Logf(severity Severity, format string, args ...interface{}) {}

// Error does nothing
func (l *NoOpLogger) Error(err error) {}

// Debug does nothing
func (l *NoOpLogger) Debug(msg string) {}

// Info does nothing
func (l *NoOpLogger) Info(msg string) {}

// Warning does nothing
func (l *NoOpLogger) Warning(msg string) {}
