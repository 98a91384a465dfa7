package util

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var logger = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return l
}

// Logger exposes the underlying logrus logger for structured fields
func Logger() *logrus.Logger {
	return logger
}

// SetOutput redirects log output (tests use a buffer)
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// SetLogLevel sets the minimum log level to display
func SetLogLevel(level LogLevel) {
	switch level {
	case LevelDebug:
		logger.SetLevel(logrus.DebugLevel)
	case LevelInfo:
		logger.SetLevel(logrus.InfoLevel)
	case LevelWarn:
		logger.SetLevel(logrus.WarnLevel)
	default:
		logger.SetLevel(logrus.ErrorLevel)
	}
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LevelDebug)
	}
}

// SetQuiet enables quiet mode (errors only)
func SetQuiet(quiet bool) {
	if quiet {
		SetLogLevel(LevelError)
	}
}

// IsQuiet reports whether only errors are being shown
func IsQuiet() bool {
	return logger.GetLevel() <= logrus.ErrorLevel
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	if f, ok := logger.Formatter.(*logrus.TextFormatter); ok {
		f.DisableColors = !enabled
		f.ForceColors = enabled
	}
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// SuccessLog logs success messages (always shown unless quiet)
func SuccessLog(format string, args ...interface{}) {
	logger.WithField("status", "ok").Info(fmt.Sprintf(format, args...))
}
