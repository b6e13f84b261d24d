package logger

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Level mirrors zerolog levels with the subset the agent uses.
type Level = zerolog.Level

const (
	DEBUG = zerolog.DebugLevel
	INFO  = zerolog.InfoLevel
	WARN  = zerolog.WarnLevel
	ERROR = zerolog.ErrorLevel
)

var log zerolog.Logger

func init() {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log = zerolog.New(writer).With().Timestamp().Logger().Level(levelFromEnv())
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("HELPLINE_LOG_LEVEL"))) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel overrides the minimum level at runtime (e.g. --debug flag).
func SetLevel(level Level) {
	log = log.Level(level)
}

func emit(event *zerolog.Event, component, msg string, fields map[string]interface{}) {
	event = event.Str("component", component)
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

func DebugC(component, msg string) {
	emit(log.Debug(), component, msg, nil)
}

func DebugCF(component, msg string, fields map[string]interface{}) {
	emit(log.Debug(), component, msg, fields)
}

func InfoC(component, msg string) {
	emit(log.Info(), component, msg, nil)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	emit(log.Info(), component, msg, fields)
}

func WarnC(component, msg string) {
	emit(log.Warn(), component, msg, nil)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	emit(log.Warn(), component, msg, fields)
}

func ErrorC(component, msg string) {
	emit(log.Error(), component, msg, nil)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	emit(log.Error(), component, msg, fields)
}
