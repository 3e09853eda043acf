package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var logrusLevels = map[Level]logrus.Level{
	DEBUG: logrus.DebugLevel,
	INFO:  logrus.InfoLevel,
	WARN:  logrus.WarnLevel,
	ERROR: logrus.ErrorLevel,
	FATAL: logrus.FatalLevel,
}

var (
	defaultLogger *logrus.Logger
	once          sync.Once
)

// Init initializes the default logger with the specified level.
// Output goes to stderr so it never mixes with report output on stdout.
func Init(levelStr string) {
	once.Do(func() {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrusLevels[ParseLevel(levelStr)])
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05",
		})
		defaultLogger = l
	})
}

func get() *logrus.Logger {
	if defaultLogger == nil {
		Init("info")
	}
	return defaultLogger
}

// SetLevel sets the logging level for the default logger.
func SetLevel(levelStr string) {
	if defaultLogger == nil {
		Init(levelStr)
		return
	}
	defaultLogger.SetLevel(logrusLevels[ParseLevel(levelStr)])
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// SetColorEnable enables or disables color output.
func SetColorEnable(enable bool) {
	l := get()
	if f, ok := l.Formatter.(*logrus.TextFormatter); ok {
		f.ForceColors = enable
		f.DisableColors = !enable
	}
}

// ParseLevel converts a string to a Level. Unknown names map to INFO.
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Debugf is an alias for Debug.
func Debugf(format string, args ...interface{}) {
	Debug(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Infof is an alias for Info.
func Infof(format string, args ...interface{}) {
	Info(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Warnf is an alias for Warn.
func Warnf(format string, args ...interface{}) {
	Warn(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Errorf is an alias for Error.
func Errorf(format string, args ...interface{}) {
	Error(format, args...)
}

// Fatal logs a fatal message and exits the program.
func Fatal(format string, args ...interface{}) {
	get().Fatalf(format, args...)
}

// Fatalf is an alias for Fatal.
func Fatalf(format string, args ...interface{}) {
	Fatal(format, args...)
}

// WithField returns an entry carrying key=value on every message.
func WithField(key string, value interface{}) *logrus.Entry {
	return get().WithField(key, value)
}
