// Package logger provides the structured JSON logger shared by all services.
package logger

import (
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"
)

type Logger interface {
	Info(message string, fields map[string]interface{})
	Error(message string, fields map[string]interface{})
	Warn(message string, fields map[string]interface{})
	Debug(message string, fields map[string]interface{})
	Fatal(message string, fields map[string]interface{})
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelNames = map[level]string{
	levelDebug: "debug",
	levelInfo:  "info",
	levelWarn:  "warn",
	levelError: "error",
	levelFatal: "fatal",
}

type jsonLogger struct {
	serviceName string
	minLevel    level
	logger      *log.Logger
}

// New returns a JSON logger writing to stdout. The minimum level is taken
// from LOG_LEVEL (debug|info|warn|error), defaulting to info.
func New(serviceName string) Logger {
	return &jsonLogger{
		serviceName: serviceName,
		minLevel:    levelFromEnv(),
		logger:      log.New(os.Stdout, "", 0),
	}
}

func levelFromEnv() level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (l *jsonLogger) log(lv level, message string, fields map[string]interface{}) {
	if lv < l.minLevel {
		return
	}

	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     levelNames[lv],
		"service":   l.serviceName,
		"message":   message,
	}
	for k, v := range fields {
		entry[k] = v
	}

	jsonData, _ := json.Marshal(entry)
	l.logger.Println(string(jsonData))
}

func (l *jsonLogger) Debug(message string, fields map[string]interface{}) {
	l.log(levelDebug, message, fields)
}

func (l *jsonLogger) Info(message string, fields map[string]interface{}) {
	l.log(levelInfo, message, fields)
}

func (l *jsonLogger) Warn(message string, fields map[string]interface{}) {
	l.log(levelWarn, message, fields)
}

func (l *jsonLogger) Error(message string, fields map[string]interface{}) {
	l.log(levelError, message, fields)
}

func (l *jsonLogger) Fatal(message string, fields map[string]interface{}) {
	l.log(levelFatal, message, fields)
	os.Exit(1)
}

// NewNop returns a logger that discards everything. Used in tests.
func NewNop() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (l *nopLogger) Debug(message string, fields map[string]interface{}) {}
func (l *nopLogger) Info(message string, fields map[string]interface{})  {}
func (l *nopLogger) Warn(message string, fields map[string]interface{})  {}
func (l *nopLogger) Error(message string, fields map[string]interface{}) {}
func (l *nopLogger) Fatal(message string, fields map[string]interface{}) {}
