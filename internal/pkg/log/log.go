package log

import (
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	TraceLevel = "trace"
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

type Fields = logrus.Fields

// The application wide logger
var Current *logrus.Logger = logrus.New()

// Convert a level name from the configuration into a logrus level.
// Unknown names fall back to info.
func FromString(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case TraceLevel:
		return logrus.TraceLevel
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel, "warning":
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func SetLogLevel(level logrus.Level) {
	Current.SetLevel(level)
}

func SetLogFormatter(formatter logrus.Formatter) {
	Current.SetFormatter(formatter)
}

func IsDebug() bool {
	return Current.IsLevelEnabled(logrus.DebugLevel)
}

func Debug(args ...interface{}) {
	Current.Debug(args...)
}

func Info(args ...interface{}) {
	Current.Info(args...)
}

func Warn(args ...interface{}) {
	Current.Warn(args...)
}

func Error(args ...interface{}) {
	Current.Error(args...)
}

func Fatal(args ...interface{}) {
	Current.Fatal(args...)
}

func DebugWithFields(msg string, fields Fields) {
	Current.WithFields(fields).Debug(msg)
}

func InfoWithFields(msg string, fields Fields) {
	Current.WithFields(fields).Info(msg)
}

func WarnWithFields(msg string, fields Fields) {
	Current.WithFields(fields).Warn(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	Current.WithFields(fields).Error(msg)
}
